package escrow

import (
	"context"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/gconf"
	"github.com/iov-one/barter/store"
	"github.com/iov-one/barter/weavetest"
	"github.com/iov-one/barter/weavetest/assert"
	"github.com/iov-one/barter/x"
	"github.com/iov-one/barter/x/cash"
)

const (
	gold   = "GLD"
	silver = "SLV"

	recordDeposit  = 3
	accountDeposit = 2
	startReserve   = 10
)

type world struct {
	db     barter.CacheableKVStore
	ledger cash.BaseController
	ctrl   Controller

	maker barter.Condition
	taker barter.Condition

	makerGold   barter.Address
	makerSilver barter.Address
	takerGold   barter.Address
	takerSilver barter.Address
}

// newWorld creates a maker owning 100 GLD and a taker owning takerSilver
// SLV. Both have empty holdings of the other asset.
func newWorld(t testing.TB, takerSilver uint64) *world {
	t.Helper()
	w := &world{
		db:     store.MemStore(),
		ledger: cash.NewController(),
		maker:  weavetest.NewCondition(),
		taker:  weavetest.NewCondition(),
	}
	w.ctrl = NewController(w.ledger)
	assert.Nil(t, gconf.Save(w.db, "cash", &cash.Configuration{AccountDeposit: accountDeposit}))
	assert.Nil(t, gconf.Save(w.db, "escrow", &Configuration{RecordDeposit: recordDeposit}))

	mint := func(owner barter.Condition, ticker string, amount uint64) barter.Address {
		addr, err := w.ledger.Mint(w.db, owner.Address(), ticker, amount)
		assert.Nil(t, err)
		return addr
	}
	w.makerGold = mint(w.maker, gold, 100)
	w.makerSilver = mint(w.maker, silver, 0)
	w.takerGold = mint(w.taker, gold, 0)
	w.takerSilver = mint(w.taker, silver, takerSilver)
	assert.Nil(t, w.ledger.MintReserve(w.db, w.maker.Address(), startReserve))
	assert.Nil(t, w.ledger.MintReserve(w.db, w.taker.Address(), startReserve))
	return w
}

func (w *world) as(c barter.Condition) *weavetest.Auth {
	return &weavetest.Auth{Signer: c}
}

func (w *world) open(t testing.TB, dealID uint64) (barter.Address, Derivation) {
	t.Helper()
	_, addr, err := w.ctrl.Open(context.Background(), w.db, w.as(w.maker), w.offer(dealID))
	assert.Nil(t, err)
	d, err := Derive(w.maker.Address(), dealID)
	assert.Nil(t, err)
	assert.Equal(t, d.Record, addr)
	return addr, d
}

func (w *world) offer(dealID uint64) OpenParams {
	return OpenParams{
		Maker:           w.maker.Address(),
		Source:          w.makerGold,
		OfferedTicker:   gold,
		Amount:          100,
		RequestedTicker: silver,
		RequestedAmount: 50,
		DealID:          dealID,
	}
}

func (w *world) exchange(record barter.Address) ExchangeParams {
	return ExchangeParams{
		Escrow:           record,
		Taker:            w.taker.Address(),
		TakerSource:      w.takerSilver,
		MakerDestination: w.makerSilver,
		TakerDestination: w.takerGold,
	}
}

func (w *world) balance(t testing.TB, addr barter.Address) uint64 {
	t.Helper()
	h, err := w.ledger.Holding(w.db, addr)
	assert.Nil(t, err)
	return h.Amount
}

func (w *world) reserve(t testing.TB, addr barter.Address) uint64 {
	t.Helper()
	r, err := w.ledger.Reserve(w.db, addr)
	assert.Nil(t, err)
	return r
}

// snapshot returns all balances and reserves the escrow can touch.
// Missing holdings are left out.
func (w *world) snapshot(t testing.TB, d Derivation) map[string]uint64 {
	t.Helper()
	s := map[string]uint64{
		"maker reserve": w.reserve(t, w.maker.Address()),
		"taker reserve": w.reserve(t, w.taker.Address()),
		"record rsrv":   w.reserve(t, d.Record),
		"vault rsrv":    w.reserve(t, d.VaultAddress()),
	}
	holdings := map[string]barter.Address{
		"maker gold":   w.makerGold,
		"maker silver": w.makerSilver,
		"taker gold":   w.takerGold,
		"taker silver": w.takerSilver,
		"vault":        d.VaultAddress(),
	}
	for name, addr := range holdings {
		h, err := w.ledger.Holding(w.db, addr)
		switch {
		case err == nil:
			s[name] = h.Amount
		case !errors.ErrNotFound.Is(err):
			t.Fatalf("holding %s: %s", name, err)
		}
	}
	return s
}

// assertConserved checks that no asset and no deposit was created or lost.
func (w *world) assertConserved(t testing.TB, d Derivation, takerSilver uint64) {
	t.Helper()
	s := w.snapshot(t, d)
	assert.Equal(t, uint64(100), s["maker gold"]+s["taker gold"]+s["vault"])
	assert.Equal(t, takerSilver, s["maker silver"]+s["taker silver"])
	assert.Equal(t, uint64(2*startReserve), s["maker reserve"]+s["taker reserve"]+s["record rsrv"]+s["vault rsrv"])
}

func (w *world) assertSettled(t testing.TB, d Derivation) {
	t.Helper()
	_, err := w.ctrl.Escrow(w.db, d.Record)
	assert.IsErr(t, ErrRecordNotFound, err)
	_, err = w.ledger.Holding(w.db, d.VaultAddress())
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestOpen(t *testing.T) {
	w := newWorld(t, 80)
	record, d := w.open(t, 1)

	e, err := w.ctrl.Escrow(w.db, record)
	assert.Nil(t, err)
	assert.Equal(t, w.maker.Address(), e.Maker)
	assert.Equal(t, silver, e.RequestedTicker)
	assert.Equal(t, uint64(50), e.RequestedAmount)
	assert.Equal(t, d.RecordBump, e.EscrowBump)
	assert.Equal(t, d.VaultBump, e.VaultBump)

	vault, err := w.ledger.Holding(w.db, d.VaultAddress())
	assert.Nil(t, err)
	assert.Equal(t, uint64(100), vault.Amount)
	assert.Equal(t, gold, vault.Ticker)
	assert.Equal(t, d.VaultAddress(), vault.Owner)
	assert.Equal(t, uint64(0), w.balance(t, w.makerGold))

	assert.Equal(t, uint64(startReserve-recordDeposit-accountDeposit), w.reserve(t, w.maker.Address()))
	assert.Equal(t, uint64(recordDeposit), w.reserve(t, d.Record))
	assert.Equal(t, uint64(accountDeposit), w.reserve(t, d.VaultAddress()))
	w.assertConserved(t, d, 80)

	es, addrs, err := w.ctrl.ByMaker(w.db, w.maker.Address())
	assert.Nil(t, err)
	assert.Equal(t, 1, len(es))
	assert.Equal(t, record, addrs[0])
}

func TestOpenFailures(t *testing.T) {
	cases := map[string]struct {
		signer  func(*world) barter.Condition
		params  func(*world) OpenParams
		wantErr *errors.Error
	}{
		"not signed by the maker": {
			signer:  func(w *world) barter.Condition { return w.taker },
			params:  func(w *world) OpenParams { return w.offer(1) },
			wantErr: ErrUnauthorized,
		},
		"source of another party": {
			signer: func(w *world) barter.Condition { return w.maker },
			params: func(w *world) OpenParams {
				p := w.offer(1)
				p.Source = w.takerGold
				return p
			},
			wantErr: ErrUnauthorized,
		},
		"declared asset differs from the source": {
			signer: func(w *world) barter.Condition { return w.maker },
			params: func(w *world) OpenParams {
				p := w.offer(1)
				p.Source = w.makerSilver
				return p
			},
			wantErr: ErrAssetTypeMismatch,
		},
		"insufficient balance": {
			signer: func(w *world) barter.Condition { return w.maker },
			params: func(w *world) OpenParams {
				p := w.offer(1)
				p.Amount = 101
				return p
			},
			wantErr: ErrInsufficientBalance,
		},
		"zero requested amount": {
			signer: func(w *world) barter.Condition { return w.maker },
			params: func(w *world) OpenParams {
				p := w.offer(1)
				p.RequestedAmount = 0
				return p
			},
			wantErr: errors.ErrAmount,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := newWorld(t, 80)
			d, err := Derive(w.maker.Address(), 1)
			assert.Nil(t, err)
			before := w.snapshot(t, d)

			_, _, err = w.ctrl.Open(context.Background(), w.db, w.as(tc.signer(w)), tc.params(w))
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v, got %+v", tc.wantErr, err)
			}
			assert.Equal(t, before, w.snapshot(t, d))
			w.assertSettled(t, d)
		})
	}
}

func TestOpenReusedDealID(t *testing.T) {
	w := newWorld(t, 80)
	_, err := w.ledger.Mint(w.db, w.maker.Address(), gold, 100)
	assert.Nil(t, err)
	w.open(t, 5)

	_, _, err = w.ctrl.Open(context.Background(), w.db, w.as(w.maker), w.offer(5))
	assert.IsErr(t, ErrAddressCollision, err)

	// another deal id is fine
	w.open(t, 6)
}

func TestOpenDepositShortfall(t *testing.T) {
	w := newWorld(t, 80)
	d, err := Derive(w.maker.Address(), 1)
	assert.Nil(t, err)

	// the maker can pay the record deposit but not the vault deposit
	assert.Nil(t, gconf.Save(w.db, "escrow", &Configuration{RecordDeposit: startReserve - 1}))
	before := w.snapshot(t, d)

	_, err = w.ctrl.validateOpen(context.Background(), w.db, w.as(w.maker), w.offer(1))
	assert.IsErr(t, cash.ErrDeposit, err)

	_, _, err = w.ctrl.Open(context.Background(), w.db, w.as(w.maker), w.offer(1))
	assert.IsErr(t, cash.ErrDeposit, err)
	if ErrInsufficientBalance.Is(err) {
		t.Fatal("deposit shortfall reported as an insufficient balance")
	}
	assert.Equal(t, before, w.snapshot(t, d))
	w.assertSettled(t, d)
}

// flakyLedger fails the n-th call of op and forwards everything else.
type flakyLedger struct {
	cash.BaseController
	op string
	n  int
}

var errFlaky = errors.Wrap(errors.ErrDatabase, "flaky ledger")

func (l *flakyLedger) fail(op string) error {
	if op != l.op {
		return nil
	}
	l.n--
	if l.n == 0 {
		return errFlaky
	}
	return nil
}

func (l *flakyLedger) Allocate(ctx context.Context, db barter.KVStore, auth x.Authenticator, payer, address, owner barter.Address, ticker string) error {
	if err := l.fail("allocate"); err != nil {
		return err
	}
	return l.BaseController.Allocate(ctx, db, auth, payer, address, owner, ticker)
}

func (l *flakyLedger) Transfer(ctx context.Context, db barter.KVStore, auth x.Authenticator, from, to barter.Address, amount uint64) error {
	if err := l.fail("transfer"); err != nil {
		return err
	}
	return l.BaseController.Transfer(ctx, db, auth, from, to, amount)
}

func (l *flakyLedger) Close(ctx context.Context, db barter.KVStore, auth x.Authenticator, address, refundTo barter.Address) (uint64, error) {
	if err := l.fail("close"); err != nil {
		return 0, err
	}
	return l.BaseController.Close(ctx, db, auth, address, refundTo)
}

func (w *world) flaky(op string, n int) Controller {
	return NewController(&flakyLedger{BaseController: w.ledger, op: op, n: n})
}

func TestOpenIsAtomic(t *testing.T) {
	cases := map[string]struct {
		op string
		n  int
	}{
		"vault allocation fails after the record deposit": {op: "allocate", n: 1},
		"deposit fails after the vault allocation":        {op: "transfer", n: 1},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := newWorld(t, 80)
			d, err := Derive(w.maker.Address(), 1)
			assert.Nil(t, err)
			before := w.snapshot(t, d)

			_, _, err = w.flaky(tc.op, tc.n).Open(context.Background(), w.db, w.as(w.maker), w.offer(1))
			assert.IsErr(t, errors.ErrDatabase, err)
			assert.Equal(t, before, w.snapshot(t, d))
			w.assertSettled(t, d)

			w.open(t, 1)
		})
	}
}

// Scenario A: the maker cancels and gets everything back.
func TestCancel(t *testing.T) {
	w := newWorld(t, 80)
	record, d := w.open(t, 1)
	assert.Equal(t, uint64(100), w.balance(t, d.VaultAddress()))

	assert.Nil(t, w.ctrl.Cancel(context.Background(), w.db, w.as(w.maker), record, nil))

	assert.Equal(t, uint64(100), w.balance(t, w.makerGold))
	assert.Equal(t, uint64(startReserve), w.reserve(t, w.maker.Address()))
	assert.Equal(t, uint64(0), w.reserve(t, d.Record))
	assert.Equal(t, uint64(0), w.reserve(t, d.VaultAddress()))
	w.assertSettled(t, d)
	w.assertConserved(t, d, 80)
}

// Scenario B: the taker pays and receives the deposit.
func TestExchange(t *testing.T) {
	w := newWorld(t, 80)
	record, d := w.open(t, 1)

	assert.Nil(t, w.ctrl.Exchange(context.Background(), w.db, w.as(w.taker), w.exchange(record)))

	assert.Equal(t, uint64(50), w.balance(t, w.makerSilver))
	assert.Equal(t, uint64(30), w.balance(t, w.takerSilver))
	assert.Equal(t, uint64(100), w.balance(t, w.takerGold))
	assert.Equal(t, uint64(0), w.balance(t, w.makerGold))

	// record deposit back to the maker, vault deposit to the taker
	assert.Equal(t, uint64(startReserve-accountDeposit), w.reserve(t, w.maker.Address()))
	assert.Equal(t, uint64(startReserve+accountDeposit), w.reserve(t, w.taker.Address()))
	w.assertSettled(t, d)
	w.assertConserved(t, d, 80)
}

// Scenario C: a taker that cannot pay changes nothing.
func TestExchangeInsufficientBalance(t *testing.T) {
	w := newWorld(t, 30)
	record, d := w.open(t, 1)
	before := w.snapshot(t, d)

	err := w.ctrl.Exchange(context.Background(), w.db, w.as(w.taker), w.exchange(record))
	assert.IsErr(t, ErrInsufficientBalance, err)
	assert.Equal(t, before, w.snapshot(t, d))

	_, err = w.ctrl.Escrow(w.db, record)
	assert.Nil(t, err)

	// still exchangeable once the taker can pay
	_, err = w.ledger.Mint(w.db, w.taker.Address(), silver, 20)
	assert.Nil(t, err)
	assert.Nil(t, w.ctrl.Exchange(context.Background(), w.db, w.as(w.taker), w.exchange(record)))
	w.assertSettled(t, d)
	w.assertConserved(t, d, 50)
}

// Scenario D: only the maker can cancel.
func TestCancelUnauthorized(t *testing.T) {
	w := newWorld(t, 80)
	record, d := w.open(t, 1)
	before := w.snapshot(t, d)

	err := w.ctrl.Cancel(context.Background(), w.db, w.as(w.taker), record, nil)
	assert.IsErr(t, ErrUnauthorized, err)
	assert.Equal(t, before, w.snapshot(t, d))

	// the maker still can
	assert.Nil(t, w.ctrl.Cancel(context.Background(), w.db, w.as(w.maker), record, nil))
}

func TestSettleOnlyOnce(t *testing.T) {
	cancel := func(w *world, record barter.Address) error {
		return w.ctrl.Cancel(context.Background(), w.db, w.as(w.maker), record, nil)
	}
	exchange := func(w *world, record barter.Address) error {
		return w.ctrl.Exchange(context.Background(), w.db, w.as(w.taker), w.exchange(record))
	}
	cases := map[string]struct {
		first, second func(*world, barter.Address) error
	}{
		"cancel, cancel":     {first: cancel, second: cancel},
		"cancel, exchange":   {first: cancel, second: exchange},
		"exchange, cancel":   {first: exchange, second: cancel},
		"exchange, exchange": {first: exchange, second: exchange},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := newWorld(t, 200)
			record, d := w.open(t, 1)
			assert.Nil(t, tc.first(w, record))
			after := w.snapshot(t, d)

			assert.IsErr(t, ErrRecordNotFound, tc.second(w, record))
			assert.Equal(t, after, w.snapshot(t, d))
			w.assertConserved(t, d, 200)
		})
	}
}

func TestExchangeFailures(t *testing.T) {
	cases := map[string]struct {
		signer  func(*world) barter.Condition
		params  func(*world, barter.Address) ExchangeParams
		wantErr *errors.Error
	}{
		"taker did not sign": {
			signer:  func(w *world) barter.Condition { return w.maker },
			params:  func(w *world, r barter.Address) ExchangeParams { return w.exchange(r) },
			wantErr: ErrUnauthorized,
		},
		"taker pays with the wrong asset": {
			signer: func(w *world) barter.Condition { return w.taker },
			params: func(w *world, r barter.Address) ExchangeParams {
				p := w.exchange(r)
				p.TakerSource = w.takerGold
				return p
			},
			wantErr: ErrAssetTypeMismatch,
		},
		"maker destination owned by the taker": {
			signer: func(w *world) barter.Condition { return w.taker },
			params: func(w *world, r barter.Address) ExchangeParams {
				p := w.exchange(r)
				p.MakerDestination = w.takerSilver
				return p
			},
			wantErr: ErrWrongDestination,
		},
		"maker destination of another asset": {
			signer: func(w *world) barter.Condition { return w.taker },
			params: func(w *world, r barter.Address) ExchangeParams {
				p := w.exchange(r)
				p.MakerDestination = w.makerGold
				return p
			},
			wantErr: ErrWrongDestination,
		},
		"taker destination of another asset": {
			signer: func(w *world) barter.Condition { return w.taker },
			params: func(w *world, r barter.Address) ExchangeParams {
				p := w.exchange(r)
				p.TakerDestination = w.takerSilver
				return p
			},
			wantErr: ErrWrongDestination,
		},
		"unknown escrow": {
			signer: func(w *world) barter.Condition { return w.taker },
			params: func(w *world, r barter.Address) ExchangeParams {
				return w.exchange(weavetest.NewCondition().Address())
			},
			wantErr: ErrRecordNotFound,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := newWorld(t, 80)
			record, d := w.open(t, 1)
			before := w.snapshot(t, d)

			err := w.ctrl.Exchange(context.Background(), w.db, w.as(tc.signer(w)), tc.params(w, record))
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v, got %+v", tc.wantErr, err)
			}
			assert.Equal(t, before, w.snapshot(t, d))
		})
	}
}

func TestExchangeIsAtomic(t *testing.T) {
	cases := map[string]struct {
		op string
		n  int
	}{
		"taker destination allocation fails after the maker is paid": {op: "allocate", n: 1},
		"vault release fails after the maker is paid":                {op: "transfer", n: 2},
		"vault close fails after the release":                        {op: "close", n: 1},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := newWorld(t, 80)
			record, d := w.open(t, 1)
			_, err := w.ledger.Close(context.Background(), w.db, w.as(w.taker), w.takerGold, w.taker.Address())
			assert.Nil(t, err)
			p := w.exchange(record)
			p.TakerDestination = nil
			before := w.snapshot(t, d)

			err = w.flaky(tc.op, tc.n).Exchange(context.Background(), w.db, w.as(w.taker), p)
			assert.IsErr(t, errors.ErrDatabase, err)
			assert.Equal(t, before, w.snapshot(t, d))
			_, err = w.ctrl.Escrow(w.db, record)
			assert.Nil(t, err)

			assert.Nil(t, w.ctrl.Exchange(context.Background(), w.db, w.as(w.taker), p))
			assert.Equal(t, uint64(100), w.balance(t, w.takerGold))
			assert.Equal(t, uint64(50), w.balance(t, w.makerSilver))
			w.assertSettled(t, d)
		})
	}
}

func TestCancelIsAtomic(t *testing.T) {
	cases := map[string]struct {
		op string
		n  int
	}{
		"vault release fails after the destination allocation": {op: "transfer", n: 1},
		"vault close fails after the release":                  {op: "close", n: 1},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := newWorld(t, 80)
			record, d := w.open(t, 1)
			// the maker gold holding is empty after the deposit
			_, err := w.ledger.Close(context.Background(), w.db, w.as(w.maker), w.makerGold, w.maker.Address())
			assert.Nil(t, err)
			before := w.snapshot(t, d)

			err = w.flaky(tc.op, tc.n).Cancel(context.Background(), w.db, w.as(w.maker), record, nil)
			assert.IsErr(t, errors.ErrDatabase, err)
			assert.Equal(t, before, w.snapshot(t, d))
			_, err = w.ctrl.Escrow(w.db, record)
			assert.Nil(t, err)

			assert.Nil(t, w.ctrl.Exchange(context.Background(), w.db, w.as(w.taker), w.exchange(record)))
			w.assertSettled(t, d)
			w.assertConserved(t, d, 80)
		})
	}
}

func TestSettleDepositShortfall(t *testing.T) {
	w := newWorld(t, 80)
	record, d := w.open(t, 1)
	_, err := w.ledger.Close(context.Background(), w.db, w.as(w.taker), w.takerGold, w.taker.Address())
	assert.Nil(t, err)
	// the taker spends the whole reserve on other storage
	other := weavetest.NewCondition().Address()
	have := w.reserve(t, w.taker.Address())
	assert.Nil(t, w.ledger.Fund(context.Background(), w.db, w.as(w.taker), w.taker.Address(), other, have))
	before := w.snapshot(t, d)

	p := w.exchange(record)
	p.TakerDestination = nil
	_, _, err = w.ctrl.validateExchange(context.Background(), w.db, w.as(w.taker), p)
	assert.IsErr(t, cash.ErrDeposit, err)
	err = w.ctrl.Exchange(context.Background(), w.db, w.as(w.taker), p)
	assert.IsErr(t, cash.ErrDeposit, err)
	if ErrInsufficientBalance.Is(err) {
		t.Fatal("deposit shortfall reported as an insufficient balance")
	}
	assert.Equal(t, before, w.snapshot(t, d))

	// an existing destination needs no deposit
	_, err = w.ledger.Mint(w.db, w.taker.Address(), gold, 0)
	assert.Nil(t, err)
	assert.Nil(t, w.ctrl.Exchange(context.Background(), w.db, w.as(w.taker), p))
	w.assertSettled(t, d)
}

// plainStore hides the cache wrap support of the store it embeds.
type plainStore struct {
	barter.KVStore
}

func TestSettlementNeedsCacheableStore(t *testing.T) {
	w := newWorld(t, 80)
	d, err := Derive(w.maker.Address(), 1)
	assert.Nil(t, err)
	before := w.snapshot(t, d)

	_, _, err = w.ctrl.Open(context.Background(), plainStore{w.db}, w.as(w.maker), w.offer(1))
	assert.IsErr(t, errors.ErrHuman, err)
	assert.Equal(t, before, w.snapshot(t, d))

	record, _ := w.open(t, 1)
	err = w.ctrl.Cancel(context.Background(), plainStore{w.db}, w.as(w.maker), record, nil)
	assert.IsErr(t, errors.ErrHuman, err)
	_, err = w.ctrl.Escrow(w.db, record)
	assert.Nil(t, err)
}

func TestExchangeAllocatesTakerDestination(t *testing.T) {
	w := newWorld(t, 80)
	record, d := w.open(t, 1)

	// the taker closes its gold holding, the default one is allocated again
	_, err := w.ledger.Close(context.Background(), w.db, w.as(w.taker), w.takerGold, w.taker.Address())
	assert.Nil(t, err)

	p := w.exchange(record)
	p.TakerDestination = nil
	p.MakerDestination = nil
	assert.Nil(t, w.ctrl.Exchange(context.Background(), w.db, w.as(w.taker), p))

	assert.Equal(t, uint64(100), w.balance(t, w.takerGold))
	assert.Equal(t, uint64(50), w.balance(t, w.makerSilver))
	// taker paid a deposit for the new holding and got the vault one
	assert.Equal(t, uint64(startReserve), w.reserve(t, w.taker.Address()))
	w.assertSettled(t, d)
}

func TestCancelWrongDestination(t *testing.T) {
	w := newWorld(t, 80)
	record, _ := w.open(t, 1)

	err := w.ctrl.Cancel(context.Background(), w.db, w.as(w.maker), record, w.takerGold)
	assert.IsErr(t, ErrWrongDestination, err)

	err = w.ctrl.Cancel(context.Background(), w.db, w.as(w.maker), record, w.makerSilver)
	assert.IsErr(t, ErrWrongDestination, err)

	assert.Nil(t, w.ctrl.Cancel(context.Background(), w.db, w.as(w.maker), record, w.makerGold))
	assert.Equal(t, uint64(100), w.balance(t, w.makerGold))
}
