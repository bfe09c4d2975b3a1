package cash

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/store"
	"github.com/iov-one/barter/weavetest"
	"github.com/iov-one/barter/weavetest/assert"
)

func TestGenesis(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	genesis := `{
		"conf": {"cash": {"account_deposit": 2}},
		"cash": {
			"holdings": [
				{"owner": "` + alice.String() + `", "ticker": "IOV", "amount": 50},
				{"owner": "` + alice.String() + `", "ticker": "IOV", "amount": 25}
			],
			"reserves": [
				{"address": "` + alice.String() + `", "amount": 9}
			]
		}
	}`
	var opts barter.Options
	assert.Nil(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))

	ctrl := NewController()
	h, err := ctrl.Holding(db, HoldingAddress(alice, "IOV"))
	assert.Nil(t, err)
	assert.Equal(t, uint64(75), h.Amount)

	r, err := ctrl.Reserve(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, uint64(9), r)

	conf, err := loadConf(db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(2), conf.AccountDeposit)
}

func TestGenesisInvalidTicker(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	genesis := `{"cash": {"holdings": [{"owner": "` + alice.String() + `", "ticker": "iov", "amount": 1}]}}`
	var opts barter.Options
	assert.Nil(t, json.Unmarshal([]byte(genesis), &opts))
	err := Initializer{}.FromGenesis(opts, store.MemStore())
	assert.IsErr(t, errors.ErrCurrency, err)
}
