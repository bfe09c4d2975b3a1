package weavetest

import (
	"context"

	"github.com/iov-one/barter"
)

// Decorator is a mock implementation of the barter.Decorator interface.
//
// Set CheckErr or DeliverErr to force error response for corresponding method.
// If error attributes are not set then wrapped handler method is called and
// its result returned.
// Each method call is counted. Regardless of the method call result the
// counter is incremented.
type Decorator struct {
	checkCall int
	// CheckErr if set is returned by the Check method before calling
	// the wrapped handler.
	CheckErr error

	deliverCall int
	// DeliverErr if set is returned by the Deliver method before calling
	// the wrapped handler.
	DeliverErr error
}

var _ barter.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx context.Context, db barter.KVStore, tx barter.Tx, next barter.Checker) (*barter.CheckResult, error) {
	d.checkCall++

	if d.CheckErr != nil {
		return &barter.CheckResult{}, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx context.Context, db barter.KVStore, tx barter.Tx, next barter.Deliverer) (*barter.DeliverResult, error) {
	d.deliverCall++

	if d.DeliverErr != nil {
		return &barter.DeliverResult{}, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CheckCallCount() int {
	return d.checkCall
}

func (d *Decorator) DeliverCallCount() int {
	return d.deliverCall
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}

// Decorate returns a handler that calls the decorator with h as the next
// handler.
func Decorate(h barter.Handler, d barter.Decorator) barter.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn barter.Handler
	dc barter.Decorator
}

var _ barter.Handler = (*decoratedHandler)(nil)

func (d *decoratedHandler) Check(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	return d.dc.Check(ctx, db, tx, d.hn)
}

func (d *decoratedHandler) Deliver(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}
