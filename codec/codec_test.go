package codec

import (
	"testing"

	"github.com/iov-one/barter/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldOrder(t *testing.T) {
	raw := NewWriter("Thing", 1).
		Bytes([]byte("owner")).
		String("IOV").
		Uint64(12345678901).
		Uint8(254).
		Int64(-7).
		Bool(true).
		Bytes(nil).
		Done()

	// discriminator and version come first
	require.True(t, len(raw) > 9)
	assert.Equal(t, byte(1), raw[8])

	r, version, err := NewReader(raw, "Thing", 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), version)
	assert.Equal(t, []byte("owner"), r.Bytes("owner"))
	assert.Equal(t, "IOV", r.String("ticker"))
	assert.Equal(t, uint64(12345678901), r.Uint64("amount"))
	assert.Equal(t, uint8(254), r.Uint8("bump"))
	assert.Equal(t, int64(-7), r.Int64("delta"))
	assert.True(t, r.Bool("flag"))
	assert.Nil(t, r.Bytes("empty"))
	assert.NoError(t, r.Done())
}

func TestReaderErrors(t *testing.T) {
	valid := NewWriter("Thing", 1).Uint64(5).Done()

	cases := map[string]struct {
		raw        []byte
		name       string
		wantErr    *errors.Error
		wantDone   *errors.Error
		readFields int
	}{
		"wrong discriminator": {
			raw:     valid,
			name:    "Other",
			wantErr: errors.ErrType,
		},
		"too short for a discriminator": {
			raw:     []byte{1, 2, 3},
			name:    "Thing",
			wantErr: errors.ErrInput,
		},
		"future version": {
			raw:     NewWriter("Thing", 2).Done(),
			name:    "Thing",
			wantErr: errors.ErrInput,
		},
		"zero version": {
			raw:     NewWriter("Thing", 0).Done(),
			name:    "Thing",
			wantErr: errors.ErrInput,
		},
		"trailing bytes": {
			raw:        append(append([]byte{}, valid...), 0x01),
			name:       "Thing",
			readFields: 1,
			wantDone:   errors.ErrInput,
		},
		"trailing incomplete varint": {
			raw:        append(append([]byte{}, valid...), 0x80),
			name:       "Thing",
			readFields: 1,
			wantDone:   errors.ErrInput,
		},
		"trailing incomplete length prefix": {
			raw:        append(append([]byte{}, valid...), 0xff, 0xff),
			name:       "Thing",
			readFields: 1,
			wantDone:   errors.ErrInput,
		},
		"missing field": {
			raw:        valid,
			name:       "Thing",
			readFields: 2,
			wantDone:   errors.ErrInput,
		},
		"complete": {
			raw:        valid,
			name:       "Thing",
			readFields: 1,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			r, _, err := NewReader(tc.raw, tc.name, 1)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %q error, got %+v", tc.wantErr, err)
			}
			if err != nil {
				return
			}
			for i := 0; i < tc.readFields; i++ {
				r.Uint64("field")
			}
			if err := r.Done(); !tc.wantDone.Is(err) {
				t.Fatalf("want %q error, got %+v", tc.wantDone, err)
			}
		})
	}
}

func TestTruncatedBytes(t *testing.T) {
	raw := NewWriter("Thing", 1).Bytes([]byte("a longer value")).Done()
	r, _, err := NewReader(raw[:len(raw)-3], "Thing", 1)
	require.NoError(t, err)
	assert.Nil(t, r.Bytes("value"))
	// once failed every read is a no-op
	assert.Equal(t, "", r.String("other"))
	err = r.Done()
	assert.True(t, errors.ErrInput.Is(err))
	assert.Contains(t, err.Error(), "value: truncated")
}

func TestDiscriminator(t *testing.T) {
	assert.Equal(t, Discriminator("Escrow"), Discriminator("Escrow"))
	assert.NotEqual(t, Discriminator("Escrow"), Discriminator("Holding"))
}
