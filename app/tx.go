package app

import (
	"reflect"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/codec"
	"github.com/iov-one/barter/crypto"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/x/sigs"
)

const (
	txName        = "Tx"
	signBytesName = "TxSignBytes"

	// maxSignatures bounds the number of signatures a single transaction
	// may carry.
	maxSignatures = 16
)

// Tx is the envelope submitted to the ledger: one message and the
// signatures authorizing it.
type Tx struct {
	Msg        barter.Msg
	Signatures []*sigs.StdSignature

	msgs Msgs
}

var _ barter.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// NewTx wraps a message into a transaction without signatures.
func NewTx(msg barter.Msg) *Tx {
	return &Tx{Msg: msg}
}

// GetMsg returns the wrapped message.
func (tx *Tx) GetMsg() (barter.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrState, "no message")
	}
	return tx.Msg, nil
}

// GetSignatures returns all signatures attached to this transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the message representation that every signer
// commits to. Signatures are not part of it.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	path, raw, err := tx.msgBytes()
	if err != nil {
		return nil, err
	}
	return codec.NewWriter(signBytesName, 1).
		String(path).
		Bytes(raw).
		Done(), nil
}

// Sign appends a signature made by the signer with given sequence.
func (tx *Tx) Sign(signer crypto.Signer, chainID string, seq int64) error {
	sig, err := sigs.SignTx(signer, tx, chainID, seq)
	if err != nil {
		return errors.Wrap(err, "sign")
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

func (tx *Tx) msgBytes() (string, []byte, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return "", nil, err
	}
	raw, err := msg.Marshal()
	if err != nil {
		return "", nil, errors.Wrap(err, "marshal msg")
	}
	return msg.Path(), raw, nil
}

func (tx *Tx) Marshal() ([]byte, error) {
	path, raw, err := tx.msgBytes()
	if err != nil {
		return nil, err
	}
	if len(tx.Signatures) > maxSignatures {
		return nil, errors.Wrapf(errors.ErrInput, "too many signatures: %d", len(tx.Signatures))
	}
	w := codec.NewWriter(txName, 1).
		String(path).
		Bytes(raw).
		Uint64(uint64(len(tx.Signatures)))
	for _, s := range tx.Signatures {
		b, err := s.Marshal()
		if err != nil {
			return nil, errors.Wrap(err, "marshal signature")
		}
		w.Bytes(b)
	}
	return w.Done(), nil
}

// Unmarshal decodes the envelope. The message type is looked up by path in
// the Msgs the transaction was created with, see Msgs.Decode.
func (tx *Tx) Unmarshal(raw []byte) error {
	if tx.msgs == nil {
		return errors.Wrap(errors.ErrState, "no message types known")
	}
	r, _, err := codec.NewReader(raw, txName, 1)
	if err != nil {
		return err
	}
	path := r.String("path")
	rawMsg := r.Bytes("msg")
	n := r.Uint64("signatures")
	if n > maxSignatures {
		return errors.Wrapf(errors.ErrInput, "too many signatures: %d", n)
	}
	rawSigs := make([][]byte, 0, n)
	for i := uint64(0); i < n; i++ {
		rawSigs = append(rawSigs, r.Bytes("signature"))
	}
	if err := r.Done(); err != nil {
		return err
	}

	msg, err := tx.msgs.New(path)
	if err != nil {
		return err
	}
	if err := msg.Unmarshal(rawMsg); err != nil {
		return errors.Wrapf(err, "msg %q", path)
	}
	signatures := make([]*sigs.StdSignature, 0, len(rawSigs))
	for _, b := range rawSigs {
		var s sigs.StdSignature
		if err := s.Unmarshal(b); err != nil {
			return errors.Wrap(err, "signature")
		}
		signatures = append(signatures, &s)
	}
	tx.Msg = msg
	tx.Signatures = signatures
	return nil
}

// Msgs maps a message path to the message type decoded for it.
type Msgs map[string]reflect.Type

// NewMsgs registers the type of every example message under its path.
// Duplicated paths panic.
func NewMsgs(examples ...barter.Msg) Msgs {
	m := make(Msgs, len(examples))
	for _, ex := range examples {
		path := ex.Path()
		if _, ok := m[path]; ok {
			panic("duplicated message path: " + path)
		}
		t := reflect.TypeOf(ex)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		m[path] = t
	}
	return m
}

// New returns a zero value message registered for given path.
func (m Msgs) New(path string) (barter.Msg, error) {
	t, ok := m[path]
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "unknown message %q", path)
	}
	msg, ok := reflect.New(t).Interface().(barter.Msg)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%q is not a message", path)
	}
	return msg, nil
}

// Decode implements barter.TxDecoder.
func (m Msgs) Decode(raw []byte) (barter.Tx, error) {
	tx := &Tx{msgs: m}
	if err := tx.Unmarshal(raw); err != nil {
		return nil, err
	}
	return tx, nil
}

// TxDecoder returns the decoder for transactions carrying any of the known
// messages.
func (m Msgs) TxDecoder() barter.TxDecoder {
	return m.Decode
}
