package cash

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/gconf"
)

const optKey = "cash"

// GenesisHolding is a balance created at genesis.
type GenesisHolding struct {
	Owner  barter.Address `json:"owner"`
	Ticker string         `json:"ticker"`
	Amount uint64         `json:"amount"`
}

// GenesisReserve is a storage deposit balance created at genesis.
type GenesisReserve struct {
	Address barter.Address `json:"address"`
	Amount  uint64         `json:"amount"`
}

// Genesis is the "cash" section of the genesis file
type Genesis struct {
	Holdings []GenesisHolding `json:"holdings"`
	Reserves []GenesisReserve `json:"reserves"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ barter.Initializer = Initializer{}

// FromGenesis will parse initial holdings and reserves from genesis
// and save them to the database
func (Initializer) FromGenesis(opts barter.Options, db barter.KVStore) error {
	if _, ok := opts["conf"]; ok {
		var conf Configuration
		if err := gconf.InitConfig(db, opts, "cash", &conf); err != nil && !errors.ErrNotFound.Is(err) {
			return errors.Wrap(err, "init config")
		}
	}

	var gen Genesis
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return err
	}
	ctrl := NewController()
	for i, h := range gen.Holdings {
		if err := ValidateTicker(h.Ticker); err != nil {
			return errors.Wrapf(err, "holding %d", i)
		}
		if err := h.Owner.Validate(); err != nil {
			return errors.Wrapf(err, "holding %d owner", i)
		}
		if _, err := ctrl.Mint(db, h.Owner, h.Ticker, h.Amount); err != nil {
			return errors.Wrapf(err, "holding %d", i)
		}
	}
	for i, r := range gen.Reserves {
		if err := ctrl.MintReserve(db, r.Address, r.Amount); err != nil {
			return errors.Wrapf(err, "reserve %d", i)
		}
	}
	return nil
}
