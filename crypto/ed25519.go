// Package crypto provides the ed25519 keys and signatures used to
// authorize transactions.
package crypto

import (
	"github.com/iov-one/barter"
	"golang.org/x/crypto/ed25519"
)

const (
	PublicKeySize = ed25519.PublicKeySize
	SeedSize      = ed25519.SeedSize
)

// PublicKey is an ed25519 public key.
type PublicKey struct {
	Ed25519 []byte
}

// PrivateKey is an ed25519 private key. It is never serialized by the
// ledger, only by the key files of the command line client.
type PrivateKey struct {
	Ed25519 []byte
}

// Signature is an ed25519 signature.
type Signature struct {
	Ed25519 []byte
}

var _ PubKey = (*PublicKey)(nil)

// Verify verifies the signature was created with this message and public key
func (p *PublicKey) Verify(message []byte, sig *Signature) bool {
	if sig == nil || len(sig.Ed25519) != ed25519.SignatureSize {
		return false
	}
	if len(p.Ed25519) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p.Ed25519), message, sig.Ed25519)
}

// Condition encodes the public key into a barter condition
func (p *PublicKey) Condition() barter.Condition {
	return barter.NewCondition(ExtensionName, "ed25519", p.Ed25519)
}

var _ Signer = (*PrivateKey)(nil)

// Sign returns a matching signature for this private key
func (p *PrivateKey) Sign(message []byte) (*Signature, error) {
	bz := ed25519.Sign(ed25519.PrivateKey(p.Ed25519), message)
	return &Signature{Ed25519: bz}, nil
}

// PublicKey returns the corresponding PublicKey
func (p *PrivateKey) PublicKey() *PublicKey {
	pub := ed25519.PrivateKey(p.Ed25519).Public().(ed25519.PublicKey)
	return &PublicKey{Ed25519: pub}
}

// Seed returns the seed the key can be recreated from with
// PrivKeyEd25519FromSeed.
func (p *PrivateKey) Seed() []byte {
	return ed25519.PrivateKey(p.Ed25519).Seed()
}

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Ed25519: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	return &PrivateKey{Ed25519: ed25519.NewKeyFromSeed(seed)}
}
