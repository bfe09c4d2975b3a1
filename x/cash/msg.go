package cash

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/codec"
	"github.com/iov-one/barter/errors"
)

const (
	pathSendMsg     = "cash/send"
	pathAllocateMsg = "cash/allocate"
	pathCloseMsg    = "cash/close"

	maxMemoSize = 128
)

// SendMsg moves Amount from the Source holding to the Destination holding.
type SendMsg struct {
	Source      barter.Address
	Destination barter.Address
	Amount      uint64
	Memo        string
}

var _ barter.Msg = (*SendMsg)(nil)

func (SendMsg) Path() string {
	return pathSendMsg
}

func (m *SendMsg) Validate() error {
	if err := m.Source.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "must be positive")
	}
	if len(m.Memo) > maxMemoSize {
		return errors.Wrapf(errors.ErrInput, "memo longer than %d", maxMemoSize)
	}
	return nil
}

func (m *SendMsg) Marshal() ([]byte, error) {
	return codec.NewWriter("SendMsg", 1).
		Bytes(m.Source).
		Bytes(m.Destination).
		Uint64(m.Amount).
		String(m.Memo).
		Done(), nil
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	r, _, err := codec.NewReader(raw, "SendMsg", 1)
	if err != nil {
		return err
	}
	m.Source = r.Bytes("source")
	m.Destination = r.Bytes("destination")
	m.Amount = r.Uint64("amount")
	m.Memo = r.String("memo")
	return r.Done()
}

// AllocateMsg creates an empty holding of Ticker for Owner at
// HoldingAddress(Owner, Ticker). The owner pays the account deposit.
type AllocateMsg struct {
	Owner  barter.Address
	Ticker string
}

var _ barter.Msg = (*AllocateMsg)(nil)

func (AllocateMsg) Path() string {
	return pathAllocateMsg
}

func (m *AllocateMsg) Validate() error {
	if err := m.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	return ValidateTicker(m.Ticker)
}

func (m *AllocateMsg) Marshal() ([]byte, error) {
	return codec.NewWriter("AllocateMsg", 1).
		Bytes(m.Owner).
		String(m.Ticker).
		Done(), nil
}

func (m *AllocateMsg) Unmarshal(raw []byte) error {
	r, _, err := codec.NewReader(raw, "AllocateMsg", 1)
	if err != nil {
		return err
	}
	m.Owner = r.Bytes("owner")
	m.Ticker = r.String("ticker")
	return r.Done()
}

// CloseMsg deletes an empty holding and returns its deposit to the owner.
type CloseMsg struct {
	Holding barter.Address
}

var _ barter.Msg = (*CloseMsg)(nil)

func (CloseMsg) Path() string {
	return pathCloseMsg
}

func (m *CloseMsg) Validate() error {
	return errors.Wrap(m.Holding.Validate(), "holding")
}

func (m *CloseMsg) Marshal() ([]byte, error) {
	return codec.NewWriter("CloseMsg", 1).Bytes(m.Holding).Done(), nil
}

func (m *CloseMsg) Unmarshal(raw []byte) error {
	r, _, err := codec.NewReader(raw, "CloseMsg", 1)
	if err != nil {
		return err
	}
	m.Holding = r.Bytes("holding")
	return r.Done()
}
