package cash

import (
	"context"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
	"github.com/iov-one/barter/x"
)

// Controller is the asset ledger interface used by other extensions.
//
// Every operation validates all of its inputs before it writes anything,
// so a failed call leaves the store untouched.
type Controller interface {
	// Allocate creates an empty holding of ticker for owner at address.
	// The payer must be authorized and is charged the account deposit.
	Allocate(ctx context.Context, db barter.KVStore, auth x.Authenticator, payer, address, owner barter.Address, ticker string) error

	// Transfer moves amount between two holdings of the same ticker. The
	// owner of the source holding must be authorized.
	Transfer(ctx context.Context, db barter.KVStore, auth x.Authenticator, from, to barter.Address, amount uint64) error

	// Close deletes an empty holding and refunds its deposit to refundTo.
	// The owner of the holding must be authorized.
	Close(ctx context.Context, db barter.KVStore, auth x.Authenticator, address, refundTo barter.Address) (uint64, error)

	// Fund moves amount from the payer reserve to the address reserve, to
	// pay for storage that is not a holding.
	Fund(ctx context.Context, db barter.KVStore, auth x.Authenticator, payer, address barter.Address, amount uint64) error

	// Reclaim moves the whole reserve of address to refundTo. It is
	// called by the extension that owns the storage at address, once that
	// storage is released.
	Reclaim(db barter.KVStore, address, refundTo barter.Address) (uint64, error)

	// Holding returns the holding stored at address or ErrNotFound.
	Holding(db barter.ReadOnlyKVStore, address barter.Address) (*Holding, error)

	// Reserve returns the storage deposit balance of address.
	Reserve(db barter.ReadOnlyKVStore, address barter.Address) (uint64, error)

	// AccountDeposit returns the deposit Allocate charges for one holding.
	AccountDeposit(db barter.ReadOnlyKVStore) (uint64, error)
}

// BaseController is the Controller backed by the holding and reserve
// buckets.
type BaseController struct {
	holdings orm.ModelBucket
	reserves orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller working on the default buckets.
func NewController() BaseController {
	return BaseController{
		holdings: NewHoldingBucket(),
		reserves: NewReserveBucket(),
	}
}

func (c BaseController) Allocate(ctx context.Context, db barter.KVStore, auth x.Authenticator, payer, address, owner barter.Address, ticker string) error {
	if err := x.RequireAddress(ctx, auth, payer, "payer"); err != nil {
		return err
	}
	h := &Holding{Owner: owner, Ticker: ticker}
	if err := h.Validate(); err != nil {
		return err
	}
	if err := address.Validate(); err != nil {
		return errors.Wrap(err, "address")
	}
	switch err := c.holdings.Has(db, address); {
	case err == nil:
		return errors.Wrapf(errors.ErrDuplicate, "holding %s", address)
	case !errors.ErrNotFound.Is(err):
		return err
	}
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	if err := c.moveReserve(db, payer, address, conf.AccountDeposit); err != nil {
		return errors.Wrap(err, "account deposit")
	}
	return c.holdings.Put(db, address, h)
}

func (c BaseController) Transfer(ctx context.Context, db barter.KVStore, auth x.Authenticator, from, to barter.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "must be positive")
	}
	src, err := c.Holding(db, from)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	if err := x.RequireAddress(ctx, auth, src.Owner, "source owner"); err != nil {
		return err
	}
	dst, err := c.Holding(db, to)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if src.Ticker != dst.Ticker {
		return errors.Wrapf(errors.ErrCurrency, "cannot send %s to a %s holding", src.Ticker, dst.Ticker)
	}
	if src.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %d %s, required %d", src.Amount, src.Ticker, amount)
	}
	if from.Equals(to) {
		return nil
	}
	if dst.Amount+amount < dst.Amount {
		return errors.Wrap(errors.ErrOverflow, "destination balance")
	}
	src.Amount -= amount
	dst.Amount += amount
	if err := c.holdings.Put(db, from, src); err != nil {
		return errors.Wrap(err, "save source")
	}
	if err := c.holdings.Put(db, to, dst); err != nil {
		return errors.Wrap(err, "save destination")
	}
	return nil
}

func (c BaseController) Close(ctx context.Context, db barter.KVStore, auth x.Authenticator, address, refundTo barter.Address) (uint64, error) {
	h, err := c.Holding(db, address)
	if err != nil {
		return 0, err
	}
	if err := x.RequireAddress(ctx, auth, h.Owner, "holding owner"); err != nil {
		return 0, err
	}
	if h.Amount != 0 {
		return 0, errors.Wrapf(errors.ErrState, "holding keeps %d %s", h.Amount, h.Ticker)
	}
	if err := refundTo.Validate(); err != nil {
		return 0, errors.Wrap(err, "refund address")
	}
	if err := c.holdings.Delete(db, address); err != nil {
		return 0, err
	}
	return c.Reclaim(db, address, refundTo)
}

func (c BaseController) Fund(ctx context.Context, db barter.KVStore, auth x.Authenticator, payer, address barter.Address, amount uint64) error {
	if err := x.RequireAddress(ctx, auth, payer, "payer"); err != nil {
		return err
	}
	if err := address.Validate(); err != nil {
		return errors.Wrap(err, "address")
	}
	return c.moveReserve(db, payer, address, amount)
}

func (c BaseController) Reclaim(db barter.KVStore, address, refundTo barter.Address) (uint64, error) {
	amount, err := c.Reserve(db, address)
	if err != nil {
		return 0, err
	}
	if err := c.moveReserve(db, address, refundTo, amount); err != nil {
		return 0, err
	}
	return amount, nil
}

func (c BaseController) Holding(db barter.ReadOnlyKVStore, address barter.Address) (*Holding, error) {
	var h Holding
	if err := c.holdings.One(db, address, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c BaseController) Reserve(db barter.ReadOnlyKVStore, address barter.Address) (uint64, error) {
	var r Reserve
	switch err := c.reserves.One(db, address, &r); {
	case err == nil:
		return r.Amount, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

func (c BaseController) AccountDeposit(db barter.ReadOnlyKVStore) (uint64, error) {
	conf, err := loadConf(db)
	if err != nil {
		return 0, err
	}
	return conf.AccountDeposit, nil
}

// HoldingsOf returns all holdings of owner together with their addresses.
func (c BaseController) HoldingsOf(db barter.ReadOnlyKVStore, owner barter.Address) ([]*Holding, []barter.Address, error) {
	var hs []*Holding
	keys, err := c.holdings.ByIndex(db, "owner", owner, &hs)
	if err != nil {
		return nil, nil, err
	}
	addrs := make([]barter.Address, len(keys))
	for i, k := range keys {
		addrs[i] = k
	}
	return hs, addrs, nil
}

// Mint credits amount of ticker to the holding of owner, creating the
// holding when needed. No deposit is charged. Only the genesis
// initializer may create assets.
func (c BaseController) Mint(db barter.KVStore, owner barter.Address, ticker string, amount uint64) (barter.Address, error) {
	address := HoldingAddress(owner, ticker)
	h, err := c.Holding(db, address)
	switch {
	case errors.ErrNotFound.Is(err):
		h = &Holding{Owner: owner, Ticker: ticker}
	case err != nil:
		return nil, err
	}
	if h.Amount+amount < h.Amount {
		return nil, errors.Wrap(errors.ErrOverflow, "holding balance")
	}
	h.Amount += amount
	if err := c.holdings.Put(db, address, h); err != nil {
		return nil, err
	}
	return address, nil
}

// MintReserve credits amount to the storage deposit balance of address.
func (c BaseController) MintReserve(db barter.KVStore, address barter.Address, amount uint64) error {
	if err := address.Validate(); err != nil {
		return errors.Wrap(err, "address")
	}
	have, err := c.Reserve(db, address)
	if err != nil {
		return err
	}
	if have+amount < have {
		return errors.Wrap(errors.ErrOverflow, "reserve")
	}
	return c.setReserve(db, address, have+amount)
}

func (c BaseController) moveReserve(db barter.KVStore, from, to barter.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	have, err := c.Reserve(db, from)
	if err != nil {
		return err
	}
	if have < amount {
		return errors.Wrapf(ErrDeposit, "reserve %d, required %d", have, amount)
	}
	if from.Equals(to) {
		return nil
	}
	other, err := c.Reserve(db, to)
	if err != nil {
		return err
	}
	if other+amount < other {
		return errors.Wrap(errors.ErrOverflow, "reserve")
	}
	if err := c.setReserve(db, from, have-amount); err != nil {
		return err
	}
	return c.setReserve(db, to, other+amount)
}

func (c BaseController) setReserve(db barter.KVStore, address barter.Address, amount uint64) error {
	if amount == 0 {
		if err := c.reserves.Delete(db, address); err != nil && !errors.ErrNotFound.Is(err) {
			return err
		}
		return nil
	}
	return c.reserves.Put(db, address, &Reserve{Amount: amount})
}
