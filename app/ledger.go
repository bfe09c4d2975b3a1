package app

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const chainIDKey = "_chain_id"

// Ledger applies transactions to a committed store. Every unit of work runs
// on its own cache wrap and holds the ledger lock, so no two transactions
// ever observe each other half applied.
type Ledger struct {
	mu sync.Mutex

	store       barter.CommitKVStore
	handler     barter.Handler
	queries     barter.QueryRouter
	initializer barter.Initializer
	logger      log.Logger

	chainID string
	// height of the last commit
	height int64
}

// NewLedger loads the latest committed version of the store. A ledger
// without a chain id must be initialized with InitChain before it accepts
// transactions.
func NewLedger(
	store barter.CommitKVStore,
	handler barter.Handler,
	queries barter.QueryRouter,
	initializer barter.Initializer,
	logger log.Logger,
) (*Ledger, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load store")
	}
	info, err := store.LatestVersion()
	if err != nil {
		return nil, errors.Wrap(err, "latest version")
	}
	raw, err := store.Get([]byte(chainIDKey))
	if err != nil {
		return nil, errors.Wrap(err, "chain id")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Ledger{
		store:       store,
		handler:     handler,
		queries:     queries,
		initializer: initializer,
		logger:      logger,
		chainID:     string(raw),
		height:      info.Version,
	}, nil
}

// ChainID returns the chain id the ledger was initialized with.
func (l *Ledger) ChainID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chainID
}

// Height returns the height of the last commit.
func (l *Ledger) Height() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.height
}

// InitChain writes the genesis state and commits it as the first version.
// The chain id is read from the "chain_id" option.
func (l *Ledger) InitChain(opts barter.Options) (barter.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.chainID != "" {
		return barter.CommitID{}, errors.Wrapf(errors.ErrState, "chain %q already initialized", l.chainID)
	}
	var chainID string
	if err := opts.ReadOptions("chain_id", &chainID); err != nil {
		return barter.CommitID{}, errors.Wrap(errors.ErrInput, err.Error())
	}
	if !barter.IsValidChainID(chainID) {
		return barter.CommitID{}, errors.Wrapf(errors.ErrInput, "invalid chain id %q", chainID)
	}

	db := l.store.CacheWrap()
	if err := db.Set([]byte(chainIDKey), []byte(chainID)); err != nil {
		db.Discard()
		return barter.CommitID{}, err
	}
	if l.initializer != nil {
		if err := l.initializer.FromGenesis(opts, db); err != nil {
			db.Discard()
			return barter.CommitID{}, errors.Wrap(err, "genesis")
		}
	}
	if err := db.Write(); err != nil {
		return barter.CommitID{}, err
	}
	l.chainID = chainID
	l.logger.Info("Chain initialized", "chain_id", chainID)
	return l.commit()
}

func (l *Ledger) context(ctx context.Context, call string, tx barter.Tx) context.Context {
	ctx = barter.WithChainID(ctx, l.chainID)
	ctx = barter.WithHeight(ctx, l.height+1)
	ctx = barter.WithLogger(ctx, l.logger)
	return barter.WithLogInfo(ctx, "call", call, "path", barter.GetPath(tx))
}

func (l *Ledger) ready() error {
	if l.chainID == "" {
		return errors.Wrap(errors.ErrState, "chain not initialized")
	}
	return nil
}

// Check runs the transaction against the current state without keeping
// any of its changes.
func (l *Ledger) Check(ctx context.Context, tx barter.Tx) (*barter.CheckResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ready(); err != nil {
		return nil, err
	}

	db := l.store.CacheWrap()
	defer db.Discard()
	return l.handler.Check(l.context(ctx, "check_tx", tx), db, tx)
}

// Deliver executes the transaction. Its changes become part of the working
// state only if the handler succeeds, and are persisted by the next Commit.
func (l *Ledger) Deliver(ctx context.Context, tx barter.Tx) (*barter.DeliverResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ready(); err != nil {
		return nil, err
	}

	db := l.store.CacheWrap()
	res, err := l.handler.Deliver(l.context(ctx, "deliver_tx", tx), db, tx)
	if err != nil {
		db.Discard()
		return nil, err
	}
	if err := db.Write(); err != nil {
		return nil, errors.Wrap(err, "write")
	}
	return res, nil
}

// DeliverBytes decodes a serialized transaction before delivering it.
func (l *Ledger) DeliverBytes(ctx context.Context, decode barter.TxDecoder, raw []byte) (*barter.DeliverResult, error) {
	tx, err := loadTx(decode, raw)
	if err != nil {
		return nil, errors.Wrap(err, "decode tx")
	}
	return l.Deliver(ctx, tx)
}

// loadTx calls the decoder, and captures any panics
func loadTx(decode barter.TxDecoder, raw []byte) (tx barter.Tx, err error) {
	defer errors.Recover(&err)
	return decode(raw)
}

// Commit persists every delivered change as a new version.
func (l *Ledger) Commit() (barter.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commit()
}

func (l *Ledger) commit() (barter.CommitID, error) {
	id, err := l.store.Commit()
	if err != nil {
		return id, errors.Wrap(err, "commit")
	}
	l.height = id.Version
	l.logger.Debug("Commit synced",
		"height", id.Version,
		"hash", fmt.Sprintf("%X", id.Hash),
	)
	return id, nil
}

// Query resolves "<path>?<mod>" with the registered query handlers against
// the current working state.
func (l *Ledger) Query(path string, data []byte) ([]barter.Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	db := l.store.CacheWrap()
	defer db.Discard()
	return l.queries.Query(db, path, data)
}

// Close releases the store when it holds any resources.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
