package barter

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func TestContextHeight(t *testing.T) {
	ctx := context.Background()
	_, ok := GetHeight(ctx)
	require.False(t, ok, "height set on an empty context")

	ctx = WithHeight(ctx, 42)
	h, ok := GetHeight(ctx)
	require.True(t, ok)
	assert.EqualValues(t, 42, h)

	assert.Panics(t, func() { WithHeight(ctx, 43) }, "height overwritten")
}

func TestContextChainID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetChainID(ctx))

	withID := WithChainID(ctx, "barter-test")
	assert.Equal(t, "barter-test", GetChainID(withID))
	assert.Panics(t, func() { WithChainID(withID, "barter-other") }, "chain id overwritten")
	assert.Panics(t, func() { WithChainID(ctx, "no spaces") }, "invalid chain id accepted")
}

func TestContextLogger(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, DefaultLogger, GetLogger(ctx))

	logger := log.NewTMLogger(log.NewSyncWriter(&bytes.Buffer{}))
	ctx = WithHeight(WithLogger(ctx, logger), 5)
	assert.Equal(t, logger, GetLogger(ctx))

	tagged := WithLogInfo(ctx, "module", "escrow")
	assert.NotEqual(t, GetLogger(ctx), GetLogger(tagged))
	h, _ := GetHeight(tagged)
	assert.EqualValues(t, 5, h, "log info dropped the height")
}

func TestIsValidChainID(t *testing.T) {
	cases := map[string]bool{
		"":                       false,
		"abc":                    false,
		"barter":                 true,
		"barter-Net_01":          true,
		"barter-net-01":          true,
		"semi;colon":             false,
		"much-too-long-chain-id": false,
	}
	for id, valid := range cases {
		assert.Equal(t, valid, IsValidChainID(id), "%q", id)
	}
}
