package sigs

import (
	"context"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/x"
)

type contextKey int // local to the sigs module

const (
	contextKeySigners contextKey = iota
)

// withSigners is private, as only this module can add a signer.
func withSigners(ctx context.Context, signers []barter.Condition) context.Context {
	return context.WithValue(ctx, contextKeySigners, signers)
}

// Authenticate reveals the conditions of all keys that signed the
// transaction being processed.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns who signed the current Context.
// May be empty
func (a Authenticate) GetConditions(ctx context.Context) []barter.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeySigners).([]barter.Condition)
	return val
}

// HasAddress returns true if the given address signed the current Context.
func (a Authenticate) HasAddress(ctx context.Context, addr barter.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
