package utils

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/store"
	"github.com/iov-one/barter/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestLogging(t *testing.T) {
	var out bytes.Buffer
	logger := log.NewTMLogger(log.NewSyncWriter(&out))
	ctx := barter.WithLogger(context.Background(), logger)
	db := store.MemStore()

	ok := &weavetest.Handler{DeliverResult: barter.DeliverResult{Log: "settled"}}
	_, err := NewLogging().Deliver(ctx, db, nil, ok)
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "settled")
	assert.Contains(t, out.String(), "duration")

	out.Reset()
	failing := &weavetest.Handler{DeliverErr: errors.New("vault empty")}
	_, err = NewLogging().Deliver(ctx, db, nil, failing)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "vault empty")
}
