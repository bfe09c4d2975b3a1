package cash

import (
	"crypto/sha256"
	"regexp"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/codec"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
)

const (
	holdingBucketName = "holding"
	reserveBucketName = "reserve"
)

var isTicker = regexp.MustCompile(`^[A-Z][A-Z0-9]{2,3}$`).MatchString

// ValidateTicker returns ErrCurrency unless ticker is 3 or 4 upper case
// alphanumeric characters starting with a letter.
func ValidateTicker(ticker string) error {
	if !isTicker(ticker) {
		return errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", ticker)
	}
	return nil
}

// HoldingAddress returns the address of the holding that keeps ticker for
// owner.
func HoldingAddress(owner barter.Address, ticker string) barter.Address {
	data := sha256.Sum256(append(owner.Clone(), ticker...))
	return barter.NewCondition("cash", "holding", data[:]).Address()
}

// Holding is a balance of a single asset owned by a single party.
type Holding struct {
	Owner  barter.Address
	Ticker string
	Amount uint64
}

var _ orm.Model = (*Holding)(nil)

const holdingName = "Holding"

func (h *Holding) Marshal() ([]byte, error) {
	return codec.NewWriter(holdingName, 1).
		Bytes(h.Owner).
		String(h.Ticker).
		Uint64(h.Amount).
		Done(), nil
}

func (h *Holding) Unmarshal(raw []byte) error {
	r, _, err := codec.NewReader(raw, holdingName, 1)
	if err != nil {
		return err
	}
	h.Owner = r.Bytes("owner")
	h.Ticker = r.String("ticker")
	h.Amount = r.Uint64("amount")
	return r.Done()
}

func (h *Holding) Validate() error {
	if err := h.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	return ValidateTicker(h.Ticker)
}

// Reserve is the storage deposit balance kept by an address.
type Reserve struct {
	Amount uint64
}

var _ orm.Model = (*Reserve)(nil)

const reserveName = "Reserve"

func (r *Reserve) Marshal() ([]byte, error) {
	return codec.NewWriter(reserveName, 1).Uint64(r.Amount).Done(), nil
}

func (r *Reserve) Unmarshal(raw []byte) error {
	rd, _, err := codec.NewReader(raw, reserveName, 1)
	if err != nil {
		return err
	}
	r.Amount = rd.Uint64("amount")
	return rd.Done()
}

func (r *Reserve) Validate() error {
	if r.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "empty reserve is not stored")
	}
	return nil
}

func ownerIndexer(m orm.Model) ([]byte, error) {
	h, ok := m.(*Holding)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return h.Owner, nil
}

// NewHoldingBucket returns the bucket of all holdings, indexed by owner.
func NewHoldingBucket() orm.ModelBucket {
	return orm.NewModelBucket(holdingBucketName, &Holding{},
		orm.WithIndex("owner", ownerIndexer))
}

// NewReserveBucket returns the bucket of all storage deposit balances.
func NewReserveBucket() orm.ModelBucket {
	return orm.NewModelBucket(reserveBucketName, &Reserve{})
}
