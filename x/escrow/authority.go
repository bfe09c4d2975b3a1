package escrow

import (
	"context"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/x"
)

// vaultAuthority authorizes operations on a single vault. It is built
// from a derivation only, lives for the duration of one call and is never
// stored or sent anywhere.
type vaultAuthority struct {
	vault barter.Condition
}

var _ x.Authenticator = vaultAuthority{}

func authorityOf(d Derivation) vaultAuthority {
	return vaultAuthority{vault: d.Vault}
}

func (a vaultAuthority) GetConditions(context.Context) []barter.Condition {
	return []barter.Condition{a.vault}
}

func (a vaultAuthority) HasAddress(_ context.Context, addr barter.Address) bool {
	return a.vault.Address().Equals(addr)
}
