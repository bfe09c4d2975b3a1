package escrow

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/codec"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
	"github.com/iov-one/barter/x/cash"
)

const (
	// BucketName is where we store the escrow records
	BucketName = "escrow"

	escrowName = "Escrow"
)

// Escrow is the record of one open offer. It is stored at its derived
// record address and never modified. Settling the offer deletes it.
type Escrow struct {
	// Maker opened the escrow and receives the requested asset.
	Maker barter.Address
	// RequestedTicker and RequestedAmount are what a taker must pay.
	RequestedTicker string
	RequestedAmount uint64
	// DealID is the maker chosen seed of the record address.
	DealID uint64
	// EscrowBump and VaultBump reproduce the derived addresses without a
	// search.
	EscrowBump uint8
	VaultBump  uint8
}

var _ orm.Model = (*Escrow)(nil)

// Marshal writes the fields in declaration order, after the discriminator
// and version.
func (e *Escrow) Marshal() ([]byte, error) {
	return codec.NewWriter(escrowName, 1).
		Bytes(e.Maker).
		String(e.RequestedTicker).
		Uint64(e.RequestedAmount).
		Uint64(e.DealID).
		Uint8(e.EscrowBump).
		Uint8(e.VaultBump).
		Done(), nil
}

func (e *Escrow) Unmarshal(raw []byte) error {
	r, _, err := codec.NewReader(raw, escrowName, 1)
	if err != nil {
		return err
	}
	e.Maker = r.Bytes("maker")
	e.RequestedTicker = r.String("requested_ticker")
	e.RequestedAmount = r.Uint64("requested_amount")
	e.DealID = r.Uint64("deal_id")
	e.EscrowBump = r.Uint8("escrow_bump")
	e.VaultBump = r.Uint8("vault_bump")
	return r.Done()
}

func (e *Escrow) Validate() error {
	if err := e.Maker.Validate(); err != nil {
		return errors.Wrap(err, "maker")
	}
	if err := cash.ValidateTicker(e.RequestedTicker); err != nil {
		return errors.Wrap(err, "requested ticker")
	}
	if e.RequestedAmount == 0 {
		return errors.Wrap(errors.ErrAmount, "requested amount must be positive")
	}
	return nil
}

func makerIndexer(m orm.Model) ([]byte, error) {
	e, ok := m.(*Escrow)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return e.Maker, nil
}

// NewBucket returns the bucket of escrow records, indexed by maker.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Escrow{},
		orm.WithIndex("maker", makerIndexer))
}
