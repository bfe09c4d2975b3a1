package app

import (
	"context"
	"fmt"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// Router allows us to register many handlers with different paths and
// route each transaction to the handler of its message path.
type Router struct {
	routes map[string]barter.Handler
}

var _ barter.Registry = (*Router)(nil)
var _ barter.Handler = (*Router)(nil)

// NewRouter returns a router without any routes.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]barter.Handler, 10),
	}
}

// Handle adds a new Handler for the given path. This function panics if a
// handler for given path is already registered or the path is malformed.
func (r *Router) Handle(path string, h barter.Handler) {
	if err := barter.ValidatePath(path); err != nil {
		panic(err)
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// Handler returns the handler registered for given path. When no handler is
// registered, a handler that always fails with ErrNotFound is returned.
func (r *Router) Handler(path string) barter.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Check dispatches to the handler of the message path.
func (r *Router) Check(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	path, err := msgPath(tx)
	if err != nil {
		return nil, err
	}
	return r.Handler(path).Check(ctx, db, tx)
}

// Deliver dispatches to the handler of the message path.
func (r *Router) Deliver(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	path, err := msgPath(tx)
	if err != nil {
		return nil, err
	}
	return r.Handler(path).Deliver(ctx, db, tx)
}

func msgPath(tx barter.Tx) (string, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return "", errors.Wrap(err, "cannot load msg")
	}
	if msg == nil {
		return "", errors.Wrap(errors.ErrState, "nil message")
	}
	return msg.Path(), nil
}

type notFoundHandler string

func (path notFoundHandler) Check(context.Context, barter.KVStore, barter.Tx) (*barter.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %q", string(path))
}

func (path notFoundHandler) Deliver(context.Context, barter.KVStore, barter.Tx) (*barter.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %q", string(path))
}
