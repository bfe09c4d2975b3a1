package escrow

import (
	"context"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
	"github.com/iov-one/barter/x"
	"github.com/iov-one/barter/x/cash"
)

// OpenParams describe a new offer.
type OpenParams struct {
	Maker barter.Address
	// Source is the maker holding the deposit is taken from.
	Source        barter.Address
	OfferedTicker string
	Amount        uint64

	RequestedTicker string
	RequestedAmount uint64
	DealID          uint64
}

// ExchangeParams describe how a taker settles an offer.
type ExchangeParams struct {
	Escrow barter.Address
	Taker  barter.Address
	// TakerSource pays the requested amount.
	TakerSource barter.Address
	// MakerDestination receives the requested amount. Defaults to the
	// maker holding of the requested ticker.
	MakerDestination barter.Address
	// TakerDestination receives the vault content. Defaults to the taker
	// holding of the vault ticker, allocated at the taker expense when
	// missing.
	TakerDestination barter.Address
}

// Controller validates and settles escrows. Every operation either
// applies all of its effects or none.
type Controller struct {
	bucket orm.ModelBucket
	cash   cash.Controller
}

// NewController returns a controller moving assets through given ledger.
func NewController(ledger cash.Controller) Controller {
	return Controller{
		bucket: NewBucket(),
		cash:   ledger,
	}
}

// Escrow returns the open escrow stored at address.
func (c Controller) Escrow(db barter.ReadOnlyKVStore, address barter.Address) (*Escrow, error) {
	var e Escrow
	if err := c.bucket.One(db, address, &e); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrapf(ErrRecordNotFound, "escrow %s", address)
		}
		return nil, err
	}
	return &e, nil
}

// ByMaker returns all open escrows of maker and their addresses.
func (c Controller) ByMaker(db barter.ReadOnlyKVStore, maker barter.Address) ([]*Escrow, []barter.Address, error) {
	var es []*Escrow
	keys, err := c.bucket.ByIndex(db, "maker", maker, &es)
	if err != nil {
		return nil, nil, err
	}
	addrs := make([]barter.Address, len(keys))
	for i, k := range keys {
		addrs[i] = k
	}
	return es, addrs, nil
}

type openPlan struct {
	params OpenParams
	derive Derivation
}

func (c Controller) validateOpen(ctx context.Context, db barter.ReadOnlyKVStore, auth x.Authenticator, p OpenParams) (*openPlan, error) {
	if err := x.RequireAddress(ctx, auth, p.Maker, "maker"); err != nil {
		return nil, err
	}
	if p.Amount == 0 || p.RequestedAmount == 0 {
		return nil, errors.Wrap(errors.ErrAmount, "amounts must be positive")
	}
	if err := cash.ValidateTicker(p.RequestedTicker); err != nil {
		return nil, errors.Wrap(err, "requested ticker")
	}
	d, err := Derive(p.Maker, p.DealID)
	if err != nil {
		return nil, err
	}
	switch err := c.bucket.Has(db, d.Record); {
	case err == nil:
		return nil, errors.Wrapf(ErrAddressCollision, "deal %d of %s is already open", p.DealID, p.Maker)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}
	switch _, err := c.cash.Holding(db, d.VaultAddress()); {
	case err == nil:
		return nil, errors.Wrapf(ErrAddressCollision, "vault %s is in use", d.VaultAddress())
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}

	src, err := c.cash.Holding(db, p.Source)
	if err != nil {
		return nil, errors.Wrap(err, "source")
	}
	if !src.Owner.Equals(p.Maker) {
		return nil, errors.Wrap(ErrUnauthorized, "source is not owned by the maker")
	}
	if src.Ticker != p.OfferedTicker {
		return nil, errors.Wrapf(ErrAssetTypeMismatch, "source keeps %s, offered %s", src.Ticker, p.OfferedTicker)
	}
	if src.Amount < p.Amount {
		return nil, errors.Wrapf(ErrInsufficientBalance, "source keeps %d %s, offered %d", src.Amount, src.Ticker, p.Amount)
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	// the record deposit and the vault holding
	if err := c.requireDeposit(db, p.Maker, conf.RecordDeposit, 1); err != nil {
		return nil, err
	}
	return &openPlan{params: p, derive: d}, nil
}

// Open creates the escrow record and its vault, and moves the offered
// amount from the maker source holding into the vault. The maker pays
// the storage deposits of both. It returns the record address.
func (c Controller) Open(ctx context.Context, db barter.KVStore, auth x.Authenticator, p OpenParams) (*Escrow, barter.Address, error) {
	plan, err := c.validateOpen(ctx, db, auth, p)
	if err != nil {
		return nil, nil, err
	}
	d := plan.derive
	e := &Escrow{
		Maker:           p.Maker,
		RequestedTicker: p.RequestedTicker,
		RequestedAmount: p.RequestedAmount,
		DealID:          p.DealID,
		EscrowBump:      d.RecordBump,
		VaultBump:       d.VaultBump,
	}
	err = atomically(db, func(db barter.KVStore) error {
		conf, err := loadConf(db)
		if err != nil {
			return err
		}
		if err := c.cash.Fund(ctx, db, auth, p.Maker, d.Record, conf.RecordDeposit); err != nil {
			return errors.Wrap(err, "record deposit")
		}
		vault := d.VaultAddress()
		if err := c.cash.Allocate(ctx, db, auth, p.Maker, vault, vault, p.OfferedTicker); err != nil {
			return errors.Wrap(err, "allocate vault")
		}
		if err := c.cash.Transfer(ctx, db, auth, p.Source, vault, p.Amount); err != nil {
			return errors.Wrap(err, "deposit")
		}
		return c.bucket.Put(db, d.Record, e)
	})
	if err != nil {
		return nil, nil, err
	}
	return e, d.Record, nil
}

type settlePlan struct {
	escrow *Escrow
	derive Derivation
	vault  *cash.Holding
	// destination receives the vault content
	destination barter.Address
	// allocate is set when destination must be created first
	allocate bool
}

func (c Controller) loadVault(db barter.ReadOnlyKVStore, address barter.Address) (*Escrow, Derivation, *cash.Holding, error) {
	e, err := c.Escrow(db, address)
	if err != nil {
		return nil, Derivation{}, nil, err
	}
	d, err := Rederive(e)
	if err != nil {
		return nil, Derivation{}, nil, err
	}
	if !d.Record.Equals(address) {
		return nil, Derivation{}, nil, errors.Wrap(errors.ErrState, "record stored under a foreign address")
	}
	vault, err := c.cash.Holding(db, d.VaultAddress())
	if err != nil {
		return nil, Derivation{}, nil, errors.Wrapf(errors.ErrState, "vault of %s: %s", address, err)
	}
	return e, d, vault, nil
}

// destinationFor validates that dest is a holding of ticker owned by
// owner. A nil dest selects the default holding, which may be missing.
func (c Controller) destinationFor(db barter.ReadOnlyKVStore, dest, owner barter.Address, ticker string, allowMissing bool) (barter.Address, bool, error) {
	def := cash.HoldingAddress(owner, ticker)
	if len(dest) == 0 {
		dest = def
	}
	h, err := c.cash.Holding(db, dest)
	switch {
	case errors.ErrNotFound.Is(err):
		if allowMissing && dest.Equals(def) {
			return dest, true, nil
		}
		return nil, false, errors.Wrapf(ErrWrongDestination, "no holding %s", dest)
	case err != nil:
		return nil, false, err
	}
	if !h.Owner.Equals(owner) {
		return nil, false, errors.Wrapf(ErrWrongDestination, "holding %s is not owned by %s", dest, owner)
	}
	if h.Ticker != ticker {
		return nil, false, errors.Wrapf(ErrWrongDestination, "holding %s keeps %s, not %s", dest, h.Ticker, ticker)
	}
	return dest, false, nil
}

// requireDeposit fails with cash.ErrDeposit unless the payer reserve
// covers amount plus the deposits of the given number of new holdings.
func (c Controller) requireDeposit(db barter.ReadOnlyKVStore, payer barter.Address, amount uint64, holdings int) error {
	if holdings > 0 {
		per, err := c.cash.AccountDeposit(db)
		if err != nil {
			return err
		}
		for i := 0; i < holdings; i++ {
			if amount+per < amount {
				return errors.Wrap(errors.ErrOverflow, "deposit")
			}
			amount += per
		}
	}
	if amount == 0 {
		return nil
	}
	have, err := c.cash.Reserve(db, payer)
	if err != nil {
		return err
	}
	if have < amount {
		return errors.Wrapf(cash.ErrDeposit, "reserve %d, required %d", have, amount)
	}
	return nil
}

func (c Controller) validateCancel(ctx context.Context, db barter.ReadOnlyKVStore, auth x.Authenticator, address, destination barter.Address) (*settlePlan, error) {
	e, d, vault, err := c.loadVault(db, address)
	if err != nil {
		return nil, err
	}
	if err := x.RequireAddress(ctx, auth, e.Maker, "maker"); err != nil {
		return nil, err
	}
	dest, allocate, err := c.destinationFor(db, destination, e.Maker, vault.Ticker, true)
	if err != nil {
		return nil, err
	}
	if allocate {
		if err := c.requireDeposit(db, e.Maker, 0, 1); err != nil {
			return nil, errors.Wrap(err, "destination")
		}
	}
	return &settlePlan{escrow: e, derive: d, vault: vault, destination: dest, allocate: allocate}, nil
}

// Cancel returns the vault content to the maker, closes the vault and
// deletes the record. Only the maker can cancel. Both storage deposits
// are refunded to the maker.
func (c Controller) Cancel(ctx context.Context, db barter.KVStore, auth x.Authenticator, address, destination barter.Address) error {
	plan, err := c.validateCancel(ctx, db, auth, address, destination)
	if err != nil {
		return err
	}
	maker := plan.escrow.Maker
	return atomically(db, func(db barter.KVStore) error {
		if plan.allocate {
			if err := c.cash.Allocate(ctx, db, auth, maker, plan.destination, maker, plan.vault.Ticker); err != nil {
				return errors.Wrap(err, "allocate destination")
			}
		}
		return c.settle(ctx, db, address, plan, maker)
	})
}

func (c Controller) validateExchange(ctx context.Context, db barter.ReadOnlyKVStore, auth x.Authenticator, p ExchangeParams) (*settlePlan, barter.Address, error) {
	e, d, vault, err := c.loadVault(db, p.Escrow)
	if err != nil {
		return nil, nil, err
	}
	if err := x.RequireAddress(ctx, auth, p.Taker, "taker"); err != nil {
		return nil, nil, err
	}
	src, err := c.cash.Holding(db, p.TakerSource)
	if err != nil {
		return nil, nil, errors.Wrap(err, "taker source")
	}
	if !src.Owner.Equals(p.Taker) {
		return nil, nil, errors.Wrap(ErrUnauthorized, "taker source is not owned by the taker")
	}
	if src.Ticker != e.RequestedTicker {
		return nil, nil, errors.Wrapf(ErrAssetTypeMismatch, "taker source keeps %s, requested %s", src.Ticker, e.RequestedTicker)
	}
	if src.Amount < e.RequestedAmount {
		return nil, nil, errors.Wrapf(ErrInsufficientBalance, "taker source keeps %d %s, requested %d", src.Amount, src.Ticker, e.RequestedAmount)
	}
	makerDest, _, err := c.destinationFor(db, p.MakerDestination, e.Maker, e.RequestedTicker, false)
	if err != nil {
		return nil, nil, errors.Wrap(err, "maker destination")
	}
	takerDest, allocate, err := c.destinationFor(db, p.TakerDestination, p.Taker, vault.Ticker, true)
	if err != nil {
		return nil, nil, errors.Wrap(err, "taker destination")
	}
	if allocate {
		if err := c.requireDeposit(db, p.Taker, 0, 1); err != nil {
			return nil, nil, errors.Wrap(err, "taker destination")
		}
	}
	plan := &settlePlan{escrow: e, derive: d, vault: vault, destination: takerDest, allocate: allocate}
	return plan, makerDest, nil
}

// Exchange pays the requested amount from the taker to the maker, hands
// the vault content to the taker, closes the vault and deletes the
// record. The vault deposit is refunded to the taker, the record deposit
// to the maker.
func (c Controller) Exchange(ctx context.Context, db barter.KVStore, auth x.Authenticator, p ExchangeParams) error {
	plan, makerDest, err := c.validateExchange(ctx, db, auth, p)
	if err != nil {
		return err
	}
	e := plan.escrow
	return atomically(db, func(db barter.KVStore) error {
		if err := c.cash.Transfer(ctx, db, auth, p.TakerSource, makerDest, e.RequestedAmount); err != nil {
			return errors.Wrap(err, "pay maker")
		}
		if plan.allocate {
			if err := c.cash.Allocate(ctx, db, auth, p.Taker, plan.destination, p.Taker, plan.vault.Ticker); err != nil {
				return errors.Wrap(err, "allocate taker destination")
			}
		}
		return c.settle(ctx, db, p.Escrow, plan, p.Taker)
	})
}

// settle empties the vault into the plan destination under the vault
// authority, closes the vault refunding vaultRefund and deletes the
// record, refunding the maker.
func (c Controller) settle(ctx context.Context, db barter.KVStore, address barter.Address, plan *settlePlan, vaultRefund barter.Address) error {
	authority := authorityOf(plan.derive)
	vault := plan.derive.VaultAddress()
	if plan.vault.Amount > 0 {
		if err := c.cash.Transfer(ctx, db, authority, vault, plan.destination, plan.vault.Amount); err != nil {
			return errors.Wrap(err, "release vault")
		}
	}
	if _, err := c.cash.Close(ctx, db, authority, vault, vaultRefund); err != nil {
		return errors.Wrap(err, "close vault")
	}
	if err := c.bucket.Delete(db, address); err != nil {
		return errors.Wrap(err, "delete record")
	}
	if _, err := c.cash.Reclaim(db, address, plan.escrow.Maker); err != nil {
		return errors.Wrap(err, "record deposit")
	}
	return nil
}

// atomically runs fn on a cache of db and writes the changes only if fn
// succeeds. A store that cannot be cache wrapped is rejected.
func atomically(db barter.KVStore, fn func(barter.KVStore) error) error {
	cstore, ok := db.(barter.CacheableKVStore)
	if !ok {
		return errors.Wrapf(errors.ErrHuman, "%T cannot be cache wrapped", db)
	}
	cache := cstore.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write")
	}
	return nil
}
