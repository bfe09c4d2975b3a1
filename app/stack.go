package app

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/x/cash"
	"github.com/iov-one/barter/x/escrow"
	"github.com/iov-one/barter/x/sigs"
	"github.com/iov-one/barter/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// BarterMsgs returns every message the barter ledger accepts.
func BarterMsgs() Msgs {
	return NewMsgs(
		&cash.SendMsg{},
		&cash.AllocateMsg{},
		&cash.CloseMsg{},
		&escrow.OpenMsg{},
		&escrow.CancelMsg{},
		&escrow.ExchangeMsg{},
	)
}

// barterRouter registers the handlers of all extensions.
func barterRouter(cashCtrl cash.Controller) *Router {
	auth := sigs.Authenticate{}
	r := NewRouter()
	cash.RegisterRoutes(r, auth, cashCtrl)
	escrow.RegisterRoutes(r, auth, escrow.NewController(cashCtrl))
	return r
}

// Stack wires the decorators in front of the router. Every transaction must
// be signed.
func Stack() barter.Handler {
	return ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		sigs.NewDecorator(),
		utils.NewSavepoint().OnDeliver(),
	).WithHandler(barterRouter(cash.NewController()))
}

// QueryRouter registers the buckets of all extensions.
func QueryRouter() barter.QueryRouter {
	qr := barter.NewQueryRouter()
	qr.RegisterAll(
		sigs.RegisterQuery,
		cash.RegisterQuery,
		escrow.RegisterQuery,
	)
	return qr
}

// Genesis initializes all extensions from genesis options.
func Genesis() barter.Initializer {
	return barter.ChainInitializers{
		cash.Initializer{},
		escrow.Initializer{},
	}
}

// NewBarterLedger creates a ledger with the full barter stack on top of
// given store.
func NewBarterLedger(store barter.CommitKVStore, logger log.Logger) (*Ledger, error) {
	return NewLedger(store, Stack(), QueryRouter(), Genesis(), logger)
}
