package utils

import (
	"context"
	"fmt"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/store"
	"github.com/iov-one/barter/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavepoint(t *testing.T) {
	// always write ok, ov before calling functions
	ok, ov := []byte("demo"), []byte("data")
	// some key, value to try to write
	nk, nv := []byte{1, 2, 3}, []byte{4, 5, 6}
	derr := fmt.Errorf("something went wrong")

	cases := map[string]struct {
		save    barter.Decorator
		handler *weavetest.Handler
		check   bool // whether to call Check or Deliver
		isError bool

		written [][]byte
		missing [][]byte
	}{
		"savepoint disabled, error keeps writes": {
			save:    NewSavepoint(),
			handler: &weavetest.Handler{WriteKey: nk, WriteValue: nv, CheckErr: derr},
			check:   true,
			isError: true,
			written: [][]byte{ok, nk},
		},
		"check savepoint rolls back": {
			save:    NewSavepoint().OnCheck(),
			handler: &weavetest.Handler{WriteKey: nk, WriteValue: nv, CheckErr: derr},
			check:   true,
			isError: true,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"deliver savepoint rolls back": {
			save:    NewSavepoint().OnDeliver(),
			handler: &weavetest.Handler{WriteKey: nk, WriteValue: nv, DeliverErr: derr},
			isError: true,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"double activation keeps both": {
			save:    NewSavepoint().OnDeliver().OnCheck(),
			handler: &weavetest.Handler{WriteKey: nk, WriteValue: nv, DeliverErr: derr},
			isError: true,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"check savepoint does not affect deliver": {
			save:    NewSavepoint().OnCheck(),
			handler: &weavetest.Handler{WriteKey: nk, WriteValue: nv, DeliverErr: derr},
			isError: true,
			written: [][]byte{ok, nk},
		},
		"success is written": {
			save:    NewSavepoint().OnCheck().OnDeliver(),
			handler: &weavetest.Handler{WriteKey: nk, WriteValue: nv},
			written: [][]byte{ok, nk},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			kv := store.MemStore()
			require.NoError(t, kv.Set(ok, ov))

			var err error
			if tc.check {
				_, err = tc.save.Check(ctx, kv, nil, tc.handler)
			} else {
				_, err = tc.save.Deliver(ctx, kv, nil, tc.handler)
			}
			assert.Equal(t, tc.isError, err != nil, "got %v", err)

			for _, k := range tc.written {
				has, err := kv.Has(k)
				require.NoError(t, err)
				assert.True(t, has, "missing %x", k)
			}
			for _, k := range tc.missing {
				has, err := kv.Has(k)
				require.NoError(t, err)
				assert.False(t, has, "unexpected %x", k)
			}
		})
	}
}
