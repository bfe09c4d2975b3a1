package sigs

import (
	"github.com/iov-one/barter/codec"
	"github.com/iov-one/barter/crypto"
	"github.com/iov-one/barter/errors"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the Decorator
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the Msg.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signature of signers who signed the Msg.
	GetSignatures() []*StdSignature
}

// StdSignature binds a signature to the key that produced it and the
// sequence it was made with.
type StdSignature struct {
	Pubkey    *crypto.PublicKey
	Signature *crypto.Signature
	Sequence  int64
}

const stdSignatureName = "StdSignature"

func (s *StdSignature) Marshal() ([]byte, error) {
	pub, err := s.Pubkey.Marshal()
	if err != nil {
		return nil, err
	}
	sig, err := s.Signature.Marshal()
	if err != nil {
		return nil, err
	}
	return codec.NewWriter(stdSignatureName, 1).
		Bytes(pub).
		Bytes(sig).
		Int64(s.Sequence).
		Done(), nil
}

func (s *StdSignature) Unmarshal(raw []byte) error {
	r, _, err := codec.NewReader(raw, stdSignatureName, 1)
	if err != nil {
		return err
	}
	pub := r.Bytes("pubkey")
	sig := r.Bytes("signature")
	s.Sequence = r.Int64("sequence")
	if err := r.Done(); err != nil {
		return err
	}
	s.Pubkey = &crypto.PublicKey{}
	if err := s.Pubkey.Unmarshal(pub); err != nil {
		return errors.Wrap(err, "pubkey")
	}
	s.Signature = &crypto.Signature{}
	if err := s.Signature.Unmarshal(sig); err != nil {
		return errors.Wrap(err, "signature")
	}
	return nil
}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if s.Pubkey == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if err := s.Pubkey.Validate(); err != nil {
		return errors.Wrap(errors.ErrUnauthorized, err.Error())
	}
	if s.Signature == nil || len(s.Signature.Ed25519) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}
