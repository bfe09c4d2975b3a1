package barter

import (
	"crypto/sha256"
	"encoding/binary"

	"filippo.io/edwards25519"
	"github.com/iov-one/barter/errors"
)

const (
	// MaxSeeds is the maximum number of seeds accepted by the program
	// address derivation.
	MaxSeeds = 16
	// MaxSeedLength is the maximum length of a single seed.
	MaxSeedLength = 32

	programAddressType   = "pda"
	programAddressMarker = "ProgramDerivedAddress"
)

// FindProgramAddress derives a condition owned by the extension ext out of
// the given seeds. The bump byte is searched from 255 downwards and the
// first one producing a digest outside of the ed25519 key space is returned
// together with the condition, so that the same condition can later be
// reproduced with CreateProgramAddress without searching.
//
// ErrDuplicate is returned only if no bump value produces a usable digest.
func FindProgramAddress(ext string, seeds ...[]byte) (Condition, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		c, err := CreateProgramAddress(ext, uint8(bump), seeds...)
		switch {
		case err == nil:
			return c, uint8(bump), nil
		case errors.ErrDuplicate.Is(err):
			continue
		default:
			return nil, 0, err
		}
	}
	return nil, 0, errors.Wrap(errors.ErrDuplicate, "no viable bump")
}

// CreateProgramAddress computes the condition for the given seeds and bump.
// It fails with ErrDuplicate when the digest is a valid ed25519 public key,
// because such an address could be controlled by whoever holds the
// corresponding private key.
func CreateProgramAddress(ext string, bump uint8, seeds ...[]byte) (Condition, error) {
	if len(seeds) > MaxSeeds {
		return nil, errors.Wrapf(errors.ErrInput, "too many seeds: %d", len(seeds))
	}
	h := sha256.New()
	var prefix [binary.MaxVarintLen64]byte
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return nil, errors.Wrapf(errors.ErrInput, "seed %d too long: %d", i, len(s))
		}
		// length prefix keeps the encoding injective over seed boundaries
		n := binary.PutUvarint(prefix[:], uint64(len(s)))
		h.Write(prefix[:n])
		h.Write(s)
	}
	h.Write([]byte{bump})
	h.Write([]byte(ext))
	h.Write([]byte(programAddressMarker))
	digest := h.Sum(nil)

	if isOnCurve(digest) {
		return nil, errors.Wrapf(errors.ErrDuplicate, "bump %d is on curve", bump)
	}
	c := NewCondition(ext, programAddressType, digest)
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "extension name")
	}
	return c, nil
}

// IsProgramAddress returns true if the condition was produced by the program
// address derivation.
func IsProgramAddress(c Condition) bool {
	_, typ, data, err := c.Parse()
	return err == nil && typ == programAddressType && len(data) == sha256.Size && !isOnCurve(data)
}

func isOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
