package escrow

import (
	"context"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/x"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r barter.Registry, auth x.Authenticator, control Controller) {
	r.Handle(pathOpenMsg, OpenHandler{auth: auth, control: control})
	r.Handle(pathCancelMsg, CancelHandler{auth: auth, control: control})
	r.Handle(pathExchangeMsg, ExchangeHandler{auth: auth, control: control})
}

// RegisterQuery will register this bucket as "/escrow" and
// "/escrow/maker"
func RegisterQuery(qr barter.QueryRouter) {
	NewBucket().Register(BucketName, qr)
}

// OpenHandler opens offers.
type OpenHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ barter.Handler = OpenHandler{}

// Check runs every validation of Deliver without moving any asset.
func (h OpenHandler) Check(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	var msg OpenMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	plan, err := h.control.validateOpen(ctx, db, h.auth, msg.params())
	if err != nil {
		return nil, err
	}
	return &barter.CheckResult{Data: plan.derive.Record}, nil
}

// Deliver returns the record address as data.
func (h OpenHandler) Deliver(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	var msg OpenMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	_, addr, err := h.control.Open(ctx, db, h.auth, msg.params())
	if err != nil {
		return nil, err
	}
	barter.GetLogger(ctx).Info("escrow opened", "escrow", addr, "deal", msg.DealID)
	return &barter.DeliverResult{Data: addr, Log: "escrow opened"}, nil
}

// CancelHandler cancels offers.
type CancelHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ barter.Handler = CancelHandler{}

func (h CancelHandler) Check(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	var msg CancelMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := h.control.validateCancel(ctx, db, h.auth, msg.Escrow, msg.Destination); err != nil {
		return nil, err
	}
	return &barter.CheckResult{}, nil
}

func (h CancelHandler) Deliver(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	var msg CancelMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.control.Cancel(ctx, db, h.auth, msg.Escrow, msg.Destination); err != nil {
		return nil, err
	}
	barter.GetLogger(ctx).Info("escrow cancelled", "escrow", msg.Escrow)
	return &barter.DeliverResult{Log: "escrow cancelled"}, nil
}

// ExchangeHandler settles offers.
type ExchangeHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ barter.Handler = ExchangeHandler{}

func (h ExchangeHandler) Check(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	var msg ExchangeMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, _, err := h.control.validateExchange(ctx, db, h.auth, msg.params()); err != nil {
		return nil, err
	}
	return &barter.CheckResult{}, nil
}

func (h ExchangeHandler) Deliver(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	var msg ExchangeMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.control.Exchange(ctx, db, h.auth, msg.params()); err != nil {
		return nil, err
	}
	barter.GetLogger(ctx).Info("escrow exchanged", "escrow", msg.Escrow, "taker", msg.Taker)
	return &barter.DeliverResult{Log: "escrow exchanged"}, nil
}
