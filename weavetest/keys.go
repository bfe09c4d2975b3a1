/*
Package weavetest provides mocks and helpers for testing handlers,
decorators and the ledger runner without signing real transactions.
*/
package weavetest

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/crypto"
)

// NewKey returns a new random ed25519 private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the signature condition of a new random key.
func NewCondition() barter.Condition {
	return NewKey().PublicKey().Condition()
}
