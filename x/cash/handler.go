package cash

import (
	"context"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/x"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r barter.Registry, auth x.Authenticator, control Controller) {
	r.Handle(pathSendMsg, SendHandler{auth: auth, control: control})
	r.Handle(pathAllocateMsg, AllocateHandler{auth: auth, control: control})
	r.Handle(pathCloseMsg, CloseHandler{auth: auth, control: control})
}

// RegisterQuery will register holdings as "/holding" and
// "/holding/owner", and reserves as "/reserve".
func RegisterQuery(qr barter.QueryRouter) {
	NewHoldingBucket().Register(holdingBucketName, qr)
	NewReserveBucket().Register(reserveBucketName, qr)
}

// SendHandler will handle sending assets between holdings
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ barter.Handler = SendHandler{}

// Check verifies the message is properly formed and signed by the owner
// of the source holding.
func (h SendHandler) Check(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &barter.CheckResult{}, nil
}

// Deliver moves the assets from source to destination if
// all preconditions are met
func (h SendHandler) Deliver(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.Transfer(ctx, db, h.auth, msg.Source, msg.Destination, msg.Amount); err != nil {
		return nil, err
	}
	return &barter.DeliverResult{}, nil
}

func (h SendHandler) validate(ctx context.Context, db barter.KVStore, tx barter.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	src, err := h.control.Holding(db, msg.Source)
	if err != nil {
		return nil, errors.Wrap(err, "source")
	}
	if err := x.RequireAddress(ctx, h.auth, src.Owner, "source owner"); err != nil {
		return nil, err
	}
	return &msg, nil
}

// AllocateHandler creates empty holdings
type AllocateHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ barter.Handler = AllocateHandler{}

func (h AllocateHandler) Check(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &barter.CheckResult{}, nil
}

// Deliver returns the address of the new holding as data.
func (h AllocateHandler) Deliver(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	address := HoldingAddress(msg.Owner, msg.Ticker)
	if err := h.control.Allocate(ctx, db, h.auth, msg.Owner, address, msg.Owner, msg.Ticker); err != nil {
		return nil, err
	}
	return &barter.DeliverResult{Data: address}, nil
}

func (h AllocateHandler) validate(ctx context.Context, tx barter.Tx) (*AllocateMsg, error) {
	var msg AllocateMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := x.RequireAddress(ctx, h.auth, msg.Owner, "owner"); err != nil {
		return nil, err
	}
	return &msg, nil
}

// CloseHandler deletes empty holdings
type CloseHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ barter.Handler = CloseHandler{}

func (h CloseHandler) Check(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &barter.CheckResult{}, nil
}

func (h CloseHandler) Deliver(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, holding, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.control.Close(ctx, db, h.auth, msg.Holding, holding.Owner); err != nil {
		return nil, err
	}
	return &barter.DeliverResult{}, nil
}

func (h CloseHandler) validate(ctx context.Context, db barter.KVStore, tx barter.Tx) (*CloseMsg, *Holding, error) {
	var msg CloseMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	holding, err := h.control.Holding(db, msg.Holding)
	if err != nil {
		return nil, nil, err
	}
	if err := x.RequireAddress(ctx, h.auth, holding.Owner, "holding owner"); err != nil {
		return nil, nil, err
	}
	if holding.Amount != 0 {
		return nil, nil, errors.Wrapf(errors.ErrState, "holding keeps %d %s", holding.Amount, holding.Ticker)
	}
	return &msg, holding, nil
}
