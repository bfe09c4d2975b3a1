package escrow

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/codec"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/x/cash"
)

const (
	pathOpenMsg     = "escrow/open"
	pathCancelMsg   = "escrow/cancel"
	pathExchangeMsg = "escrow/exchange"
)

// OpenMsg is sent by the maker to open an offer.
type OpenMsg struct {
	Maker           barter.Address
	Source          barter.Address
	OfferedTicker   string
	Amount          uint64
	RequestedTicker string
	RequestedAmount uint64
	DealID          uint64
}

var _ barter.Msg = (*OpenMsg)(nil)

func (OpenMsg) Path() string {
	return pathOpenMsg
}

func (m *OpenMsg) Validate() error {
	if err := m.Maker.Validate(); err != nil {
		return errors.Wrap(err, "maker")
	}
	if err := m.Source.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := cash.ValidateTicker(m.OfferedTicker); err != nil {
		return errors.Wrap(err, "offered ticker")
	}
	if err := cash.ValidateTicker(m.RequestedTicker); err != nil {
		return errors.Wrap(err, "requested ticker")
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "amount must be positive")
	}
	if m.RequestedAmount == 0 {
		return errors.Wrap(errors.ErrAmount, "requested amount must be positive")
	}
	return nil
}

func (m *OpenMsg) params() OpenParams {
	return OpenParams{
		Maker:           m.Maker,
		Source:          m.Source,
		OfferedTicker:   m.OfferedTicker,
		Amount:          m.Amount,
		RequestedTicker: m.RequestedTicker,
		RequestedAmount: m.RequestedAmount,
		DealID:          m.DealID,
	}
}

func (m *OpenMsg) Marshal() ([]byte, error) {
	return codec.NewWriter("OpenMsg", 1).
		Bytes(m.Maker).
		Bytes(m.Source).
		String(m.OfferedTicker).
		Uint64(m.Amount).
		String(m.RequestedTicker).
		Uint64(m.RequestedAmount).
		Uint64(m.DealID).
		Done(), nil
}

func (m *OpenMsg) Unmarshal(raw []byte) error {
	r, _, err := codec.NewReader(raw, "OpenMsg", 1)
	if err != nil {
		return err
	}
	m.Maker = r.Bytes("maker")
	m.Source = r.Bytes("source")
	m.OfferedTicker = r.String("offered_ticker")
	m.Amount = r.Uint64("amount")
	m.RequestedTicker = r.String("requested_ticker")
	m.RequestedAmount = r.Uint64("requested_amount")
	m.DealID = r.Uint64("deal_id")
	return r.Done()
}

// CancelMsg is sent by the maker to take the deposit back.
type CancelMsg struct {
	Escrow barter.Address
	// Destination is optional, the maker holding of the vault ticker is
	// used when empty.
	Destination barter.Address
}

var _ barter.Msg = (*CancelMsg)(nil)

func (CancelMsg) Path() string {
	return pathCancelMsg
}

func (m *CancelMsg) Validate() error {
	if err := m.Escrow.Validate(); err != nil {
		return errors.Wrap(err, "escrow")
	}
	if len(m.Destination) != 0 {
		return errors.Wrap(m.Destination.Validate(), "destination")
	}
	return nil
}

func (m *CancelMsg) Marshal() ([]byte, error) {
	return codec.NewWriter("CancelMsg", 1).
		Bytes(m.Escrow).
		Bytes(m.Destination).
		Done(), nil
}

func (m *CancelMsg) Unmarshal(raw []byte) error {
	r, _, err := codec.NewReader(raw, "CancelMsg", 1)
	if err != nil {
		return err
	}
	m.Escrow = r.Bytes("escrow")
	m.Destination = r.Bytes("destination")
	return r.Done()
}

// ExchangeMsg is sent by a taker to accept an offer.
type ExchangeMsg struct {
	Escrow      barter.Address
	Taker       barter.Address
	TakerSource barter.Address
	// MakerDestination and TakerDestination are optional.
	MakerDestination barter.Address
	TakerDestination barter.Address
}

var _ barter.Msg = (*ExchangeMsg)(nil)

func (ExchangeMsg) Path() string {
	return pathExchangeMsg
}

func (m *ExchangeMsg) Validate() error {
	if err := m.Escrow.Validate(); err != nil {
		return errors.Wrap(err, "escrow")
	}
	if err := m.Taker.Validate(); err != nil {
		return errors.Wrap(err, "taker")
	}
	if err := m.TakerSource.Validate(); err != nil {
		return errors.Wrap(err, "taker source")
	}
	if len(m.MakerDestination) != 0 {
		if err := m.MakerDestination.Validate(); err != nil {
			return errors.Wrap(err, "maker destination")
		}
	}
	if len(m.TakerDestination) != 0 {
		if err := m.TakerDestination.Validate(); err != nil {
			return errors.Wrap(err, "taker destination")
		}
	}
	return nil
}

func (m *ExchangeMsg) params() ExchangeParams {
	return ExchangeParams{
		Escrow:           m.Escrow,
		Taker:            m.Taker,
		TakerSource:      m.TakerSource,
		MakerDestination: m.MakerDestination,
		TakerDestination: m.TakerDestination,
	}
}

func (m *ExchangeMsg) Marshal() ([]byte, error) {
	return codec.NewWriter("ExchangeMsg", 1).
		Bytes(m.Escrow).
		Bytes(m.Taker).
		Bytes(m.TakerSource).
		Bytes(m.MakerDestination).
		Bytes(m.TakerDestination).
		Done(), nil
}

func (m *ExchangeMsg) Unmarshal(raw []byte) error {
	r, _, err := codec.NewReader(raw, "ExchangeMsg", 1)
	if err != nil {
		return err
	}
	m.Escrow = r.Bytes("escrow")
	m.Taker = r.Bytes("taker")
	m.TakerSource = r.Bytes("taker_source")
	m.MakerDestination = r.Bytes("maker_destination")
	m.TakerDestination = r.Bytes("taker_destination")
	return r.Done()
}
