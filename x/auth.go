package x

import (
	"context"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// Authenticator tells which conditions authorized the current unit of
// work. Extensions receive one in their constructor instead of reading
// signatures themselves, so that derived authorities such as escrow vaults
// can act through the same checks as signers.
type Authenticator interface {
	// GetConditions returns every condition satisfied in ctx.
	GetConditions(ctx context.Context) []barter.Condition
	// HasAddress reports whether any satisfied condition has addr.
	HasAddress(ctx context.Context, addr barter.Address) bool
}

// RequireAddress returns ErrUnauthorized unless addr authorized the unit
// of work. role names the party in the error, eg. "maker".
func RequireAddress(ctx context.Context, auth Authenticator, addr barter.Address, role string) error {
	if len(addr) == 0 {
		return errors.Wrapf(errors.ErrUnauthorized, "no %s address", role)
	}
	if !auth.HasAddress(ctx, addr) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s %s", role, addr)
	}
	return nil
}
