package crypto

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/codec"
	"github.com/iov-one/barter/errors"
)

// ExtensionName is used for the Conditions we get from signatures
const ExtensionName = "sigs"

// PubKey represents a crypto public key we use
type PubKey interface {
	Verify(message []byte, sig *Signature) bool
	Condition() barter.Condition
}

// Signer is the functionality we use from a private key
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}

// Address is a shortcut for the address of the key condition.
func (p *PublicKey) Address() barter.Address {
	return p.Condition().Address()
}

const (
	publicKeyName = "PublicKey"
	signatureName = "Signature"
)

func (p *PublicKey) Marshal() ([]byte, error) {
	return codec.NewWriter(publicKeyName, 1).Bytes(p.Ed25519).Done(), nil
}

func (p *PublicKey) Unmarshal(raw []byte) error {
	r, _, err := codec.NewReader(raw, publicKeyName, 1)
	if err != nil {
		return err
	}
	p.Ed25519 = r.Bytes("ed25519")
	return r.Done()
}

// Validate returns an error if the key is not a valid ed25519 public key.
func (p *PublicKey) Validate() error {
	if p == nil || len(p.Ed25519) != PublicKeySize {
		return errors.Wrap(errors.ErrInput, "public key size")
	}
	return nil
}

func (s *Signature) Marshal() ([]byte, error) {
	return codec.NewWriter(signatureName, 1).Bytes(s.Ed25519).Done(), nil
}

func (s *Signature) Unmarshal(raw []byte) error {
	r, _, err := codec.NewReader(raw, signatureName, 1)
	if err != nil {
		return err
	}
	s.Ed25519 = r.Bytes("ed25519")
	return r.Done()
}
