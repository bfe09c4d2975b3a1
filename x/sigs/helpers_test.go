package sigs

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/weavetest"
)

// signedTx is a transaction mock carrying signatures.
type signedTx struct {
	weavetest.Tx
	Signatures []*StdSignature
}

var _ SignedTx = (*signedTx)(nil)
var _ barter.Tx = (*signedTx)(nil)

func newSignedTx(payload []byte) *signedTx {
	return &signedTx{
		Tx: weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/sigs", Serialized: payload}},
	}
}

func (tx *signedTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

func (tx *signedTx) GetSignBytes() ([]byte, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	return msg.Marshal()
}
