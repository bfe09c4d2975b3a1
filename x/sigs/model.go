package sigs

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/codec"
	"github.com/iov-one/barter/crypto"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

// maxSequenceValue is the greatest nonce a client can safely represent,
// Number.MAX_SAFE_INTEGER.
const maxSequenceValue = (1 << 53) - 1

// UserData keeps the replay protection state of a single public key.
type UserData struct {
	Pubkey   *crypto.PublicKey
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

const userDataName = "UserData"

func (u *UserData) Marshal() ([]byte, error) {
	var pub []byte
	if u.Pubkey != nil {
		raw, err := u.Pubkey.Marshal()
		if err != nil {
			return nil, err
		}
		pub = raw
	}
	return codec.NewWriter(userDataName, 1).
		Bytes(pub).
		Int64(u.Sequence).
		Done(), nil
}

func (u *UserData) Unmarshal(raw []byte) error {
	r, _, err := codec.NewReader(raw, userDataName, 1)
	if err != nil {
		return err
	}
	pub := r.Bytes("pubkey")
	u.Sequence = r.Int64("sequence")
	if err := r.Done(); err != nil {
		return err
	}
	u.Pubkey = nil
	if pub != nil {
		u.Pubkey = &crypto.PublicKey{}
		if err := u.Pubkey.Unmarshal(pub); err != nil {
			return errors.Wrap(err, "pubkey")
		}
	}
	return nil
}

func (u *UserData) Validate() error {
	if u.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if u.Pubkey == nil {
		if u.Sequence > 0 {
			return errors.Wrap(ErrInvalidSequence, "needs pubkey")
		}
		return nil
	}
	return errors.Wrap(u.Pubkey.Validate(), "pubkey")
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", u.Sequence, expected)
	}
	next := u.Sequence + 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// Bucket stores UserData by the address of its public key.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket(BucketName, &UserData{}),
	}
}

// GetOrCreate loads the UserData of given key, or a fresh one if the key
// never signed anything.
func (b Bucket) GetOrCreate(db barter.ReadOnlyKVStore, pubkey *crypto.PublicKey) (*UserData, error) {
	var u UserData
	switch err := b.One(db, pubkey.Address(), &u); {
	case err == nil:
		return &u, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{Pubkey: pubkey}, nil
	default:
		return nil, err
	}
}
