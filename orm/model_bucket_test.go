package orm

import (
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/codec"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type offer struct {
	Owner  []byte
	Amount uint64
}

func (o *offer) Marshal() ([]byte, error) {
	return codec.NewWriter("offer", 1).Bytes(o.Owner).Uint64(o.Amount).Done(), nil
}

func (o *offer) Unmarshal(raw []byte) error {
	r, _, err := codec.NewReader(raw, "offer", 1)
	if err != nil {
		return err
	}
	o.Owner = r.Bytes("owner")
	o.Amount = r.Uint64("amount")
	return r.Done()
}

func (o *offer) Validate() error {
	if len(o.Owner) == 0 {
		return errors.Wrap(errors.ErrEmpty, "owner")
	}
	return nil
}

type other struct {
	offer
}

func ownerIndexer(m Model) ([]byte, error) {
	o, ok := m.(*offer)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return o.Owner, nil
}

func newOfferBucket() ModelBucket {
	return NewModelBucket("offer", &offer{}, WithIndex("owner", ownerIndexer))
}

func TestModelBucket(t *testing.T) {
	db := store.MemStore()
	b := newOfferBucket()

	alice := &offer{Owner: []byte("alice"), Amount: 10}
	require.NoError(t, b.Put(db, []byte("a1"), alice))
	require.NoError(t, b.Has(db, []byte("a1")))

	var got offer
	require.NoError(t, b.One(db, []byte("a1"), &got))
	assert.Equal(t, *alice, got)

	err := b.One(db, []byte("missing"), &got)
	assert.True(t, errors.ErrNotFound.Is(err))
	assert.True(t, errors.ErrNotFound.Is(b.Has(db, []byte("missing"))))

	err = b.One(db, []byte("a1"), &other{})
	assert.True(t, errors.ErrType.Is(err))

	err = b.Put(db, []byte("bad"), &offer{})
	assert.True(t, errors.ErrEmpty.Is(err))

	require.NoError(t, b.Delete(db, []byte("a1")))
	err = b.Delete(db, []byte("a1"))
	assert.True(t, errors.ErrNotFound.Is(err), "double delete must fail")
	assert.True(t, errors.ErrNotFound.Is(b.Has(db, []byte("a1"))))
}

func TestModelBucketIndex(t *testing.T) {
	db := store.MemStore()
	b := newOfferBucket()

	require.NoError(t, b.Put(db, []byte("a1"), &offer{Owner: []byte("alice"), Amount: 1}))
	require.NoError(t, b.Put(db, []byte("a2"), &offer{Owner: []byte("alice"), Amount: 2}))
	require.NoError(t, b.Put(db, []byte("b1"), &offer{Owner: []byte("bob"), Amount: 3}))
	// "alic" must not match "alice" entries
	require.NoError(t, b.Put(db, []byte("c1"), &offer{Owner: []byte("alic"), Amount: 4}))

	var offers []*offer
	keys, err := b.ByIndex(db, "owner", []byte("alice"), &offers)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a1"), []byte("a2")}, keys)
	require.Len(t, offers, 2)
	assert.Equal(t, uint64(1), offers[0].Amount)
	assert.Equal(t, uint64(2), offers[1].Amount)

	// moving an offer to another owner updates the index
	require.NoError(t, b.Put(db, []byte("a2"), &offer{Owner: []byte("bob"), Amount: 2}))
	var values []offer
	keys, err = b.ByIndex(db, "owner", []byte("bob"), &values)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a2"), []byte("b1")}, keys)
	assert.Len(t, values, 2)

	// deleting removes the index entry
	require.NoError(t, b.Delete(db, []byte("b1")))
	keys, err = b.ByIndex(db, "owner", []byte("bob"), &values)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a2")}, keys)

	_, err = b.ByIndex(db, "unknown", []byte("bob"), &values)
	assert.True(t, errors.ErrInput.Is(err))
	_, err = b.ByIndex(db, "owner", []byte("bob"), values)
	assert.True(t, errors.ErrType.Is(err))
}

func TestModelBucketQuery(t *testing.T) {
	db := store.MemStore()
	b := newOfferBucket()
	qr := barter.NewQueryRouter()
	b.Register("offers", qr)

	require.NoError(t, b.Put(db, []byte("a1"), &offer{Owner: []byte("alice"), Amount: 1}))
	require.NoError(t, b.Put(db, []byte("a2"), &offer{Owner: []byte("alice"), Amount: 2}))
	require.NoError(t, b.Put(db, []byte("b1"), &offer{Owner: []byte("bob"), Amount: 3}))

	res, err := qr.Query(db, "/offers", []byte("a2"))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, []byte("a2"), res[0].Key)

	res, err = qr.Query(db, "/offers", []byte("zz"))
	require.NoError(t, err)
	assert.Len(t, res, 0)

	res, err = qr.Query(db, "/offers?prefix", []byte("a"))
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, []byte("a1"), res[0].Key)
	assert.Equal(t, []byte("a2"), res[1].Key)

	res, err = qr.Query(db, "/offers/owner", []byte("bob"))
	require.NoError(t, err)
	require.Len(t, res, 1)
	var o offer
	require.NoError(t, o.Unmarshal(res[0].Value))
	assert.Equal(t, uint64(3), o.Amount)

	_, err = qr.Query(db, "/unknown", nil)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestPrefixRange(t *testing.T) {
	cases := map[string]struct {
		prefix    []byte
		wantStart []byte
		wantEnd   []byte
	}{
		"nil":           {nil, nil, nil},
		"simple":        {[]byte("ab"), []byte("ab"), []byte("ac")},
		"trailing 0xff": {[]byte{1, 0xff}, []byte{1, 0xff}, []byte{2}},
		"all 0xff":      {[]byte{0xff, 0xff}, []byte{0xff, 0xff}, nil},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			start, end := prefixRange(tc.prefix)
			assert.Equal(t, tc.wantStart, start)
			assert.Equal(t, tc.wantEnd, end)
		})
	}
}
