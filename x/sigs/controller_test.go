package sigs

import (
	"testing"

	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/store"
	"github.com/iov-one/barter/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSignBytes(t *testing.T) {
	a, err := BuildSignBytes([]byte("deal"), "barter-chain", 1)
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, err := BuildSignBytes([]byte("deal"), "barter-chain", 2)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "sequence must change the digest")

	c, err := BuildSignBytes([]byte("deal"), "other-chain", 1)
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "chain id must change the digest")

	_, err = BuildSignBytes([]byte("deal"), "barter-chain", -1)
	assert.True(t, ErrInvalidSequence.Is(err))

	_, err = BuildSignBytes([]byte("deal"), "bad", 0)
	assert.True(t, errors.ErrInput.Is(err))
}

func TestVerifyTxSignatures(t *testing.T) {
	const chainID = "test-chain"
	db := store.MemStore()

	alice := weavetest.NewKey()
	bob := weavetest.NewKey()

	tx := newSignedTx([]byte("open escrow"))
	sig0, err := SignTx(alice, tx, chainID, 0)
	require.NoError(t, err)
	tx.Signatures = []*StdSignature{sig0}

	signers, err := VerifyTxSignatures(db, tx, chainID)
	require.NoError(t, err)
	require.Len(t, signers, 1)
	assert.True(t, alice.PublicKey().Condition().Equals(signers[0]))

	// replay is rejected
	_, err = VerifyTxSignatures(db, tx, chainID)
	assert.True(t, ErrInvalidSequence.Is(err))

	nonce, err := NextNonce(db, alice.PublicKey().Address())
	require.NoError(t, err)
	assert.Equal(t, int64(1), nonce)

	// signature for another chain does not verify
	other, err := SignTx(bob, tx, "other-chain", 0)
	require.NoError(t, err)
	tx.Signatures = []*StdSignature{other}
	_, err = VerifyTxSignatures(db, tx, chainID)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	// two signers
	sig1, err := SignTx(alice, tx, chainID, 1)
	require.NoError(t, err)
	sigBob, err := SignTx(bob, tx, chainID, 0)
	require.NoError(t, err)
	tx.Signatures = []*StdSignature{sig1, sigBob}
	signers, err = VerifyTxSignatures(db, tx, chainID)
	require.NoError(t, err)
	assert.Len(t, signers, 2)

	// no signatures is not an error here
	tx.Signatures = nil
	signers, err = VerifyTxSignatures(db, tx, chainID)
	require.NoError(t, err)
	assert.Empty(t, signers)
}

func TestNextNonceUnknown(t *testing.T) {
	nonce, err := NextNonce(store.MemStore(), weavetest.NewCondition().Address())
	require.NoError(t, err)
	assert.Equal(t, int64(0), nonce)
}
