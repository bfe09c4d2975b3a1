package store

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/barter/errors"
)

// Suite checks what the ledger expects from a CacheableKVStore: a cache
// wrap is a unit of work whose changes reach the parent on Write and vanish
// on Discard, and iterators over a cache see the merged state.
//
// btree_test.go and iavl/commit_test.go run it against their stores.
type Suite struct {
	open func() (base CacheableKVStore, cleanup func())
}

// NewSuite returns a suite that calls open for a fresh store in every check.
func NewSuite(open func() (base CacheableKVStore, cleanup func())) *Suite {
	return &Suite{open: open}
}

// kv is the expected content of a store. An empty value marks a key that
// must be missing.
type kv map[string]string

func assertState(t testing.TB, db ReadOnlyKVStore, want kv) {
	t.Helper()
	for k, v := range want {
		got, err := db.Get([]byte(k))
		require.NoError(t, err)
		has, err := db.Has([]byte(k))
		require.NoError(t, err)
		if v == "" {
			assert.Nil(t, got, "key %q", k)
			assert.False(t, has, "key %q", k)
			continue
		}
		assert.Equal(t, []byte(v), got, "key %q", k)
		assert.True(t, has, "key %q", k)
	}
}

// apply runs ops against db. "key=value" sets a key, "-key" deletes it.
func apply(t testing.TB, db SetDeleter, ops ...string) {
	t.Helper()
	for _, op := range ops {
		if strings.HasPrefix(op, "-") {
			require.NoError(t, db.Delete([]byte(op[1:])))
			continue
		}
		parts := strings.SplitN(op, "=", 2)
		require.Len(t, parts, 2, op)
		require.NoError(t, db.Set([]byte(parts[0]), []byte(parts[1])))
	}
}

// collect returns the "key=value" pairs an iterator over [start, end)
// yields. Empty bounds are open.
func collect(t testing.TB, db ReadOnlyKVStore, start, end string, reverse bool) []string {
	t.Helper()
	var from, to []byte
	if start != "" {
		from = []byte(start)
	}
	if end != "" {
		to = []byte(end)
	}
	iterate := db.Iterator
	if reverse {
		iterate = db.ReverseIterator
	}
	it, err := iterate(from, to)
	require.NoError(t, err)
	defer it.Release()

	var pairs []string
	for {
		key, value, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return pairs
		}
		require.NoError(t, err)
		pairs = append(pairs, string(key)+"="+string(value))
	}
}

// UnitOfWork follows a delivery: an outer cache wrap, nested wraps that
// fail or succeed, then a write into the base store.
func (s *Suite) UnitOfWork(t *testing.T) {
	base, cleanup := s.open()
	defer cleanup()
	apply(t, base, "vault=100", "maker=0")

	deliver := base.CacheWrap()
	assertState(t, deliver, kv{"vault": "100", "maker": "0"})
	apply(t, deliver, "-vault", "maker=100", "record=open")
	assertState(t, deliver, kv{"vault": "", "maker": "100", "record": "open"})
	assertState(t, base, kv{"vault": "100", "maker": "0", "record": ""})

	// a failed nested unit leaves the outer one untouched
	inner := deliver.CacheWrap()
	apply(t, inner, "vault=1", "-record")
	inner.Discard()
	assertState(t, deliver, kv{"vault": "", "maker": "100", "record": "open"})

	// a successful one is folded into the outer unit only
	inner = deliver.CacheWrap()
	apply(t, inner, "taker=5")
	require.NoError(t, inner.Write())
	assertState(t, deliver, kv{"taker": "5"})
	assertState(t, base, kv{"taker": ""})

	require.NoError(t, deliver.Write())
	assertState(t, base, kv{"vault": "", "maker": "100", "record": "open", "taker": "5"})

	check := base.CacheWrap()
	apply(t, check, "-maker", "record=closed")
	check.Discard()
	assertState(t, base, kv{"maker": "100", "record": "open"})
}

// Overwrites checks how a cache wrap shadows the values of its parent.
func (s *Suite) Overwrites(t *testing.T) {
	cases := map[string]struct {
		parent []string
		ops    []string
		want   kv
	}{
		"new key": {
			ops:  []string{"a=1"},
			want: kv{"a": "1"},
		},
		"overwrite parent": {
			parent: []string{"a=1"},
			ops:    []string{"a=2"},
			want:   kv{"a": "2"},
		},
		"overwrite twice": {
			parent: []string{"a=1"},
			ops:    []string{"a=2", "a=3"},
			want:   kv{"a": "3"},
		},
		"delete parent": {
			parent: []string{"a=1", "b=2"},
			ops:    []string{"-a"},
			want:   kv{"a": "", "b": "2"},
		},
		"delete then set": {
			parent: []string{"a=1"},
			ops:    []string{"-a", "a=3"},
			want:   kv{"a": "3"},
		},
		"set then delete": {
			ops:  []string{"a=1", "-a"},
			want: kv{"a": ""},
		},
		"delete missing": {
			ops:  []string{"-a"},
			want: kv{"a": ""},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			base, cleanup := s.open()
			defer cleanup()
			apply(t, base, tc.parent...)

			cache := base.CacheWrap()
			apply(t, cache, tc.ops...)
			assertState(t, cache, tc.want)
			require.NoError(t, cache.Write())
			assertState(t, base, tc.want)
		})
	}
}

// Ranges iterates a cache wrap that overwrites and deletes parent keys.
func (s *Suite) Ranges(t *testing.T) {
	base, cleanup := s.open()
	defer cleanup()
	apply(t, base, "a=1", "b=1", "c=1", "d=1", "e=1")
	cache := base.CacheWrap()
	defer cache.Discard()
	apply(t, cache, "-b", "c=2", "bb=2", "f=2", "-e")

	cases := map[string]struct {
		start, end string
		reverse    bool
		want       []string
	}{
		"everything": {
			want: []string{"a=1", "bb=2", "c=2", "d=1", "f=2"},
		},
		"everything reversed": {
			reverse: true,
			want:    []string{"f=2", "d=1", "c=2", "bb=2", "a=1"},
		},
		"end is exclusive": {
			start: "b",
			end:   "d",
			want:  []string{"bb=2", "c=2"},
		},
		"reversed range": {
			start:   "b",
			end:     "d",
			reverse: true,
			want:    []string{"c=2", "bb=2"},
		},
		"open end": {
			start: "c",
			want:  []string{"c=2", "d=1", "f=2"},
		},
		"open start reversed": {
			end:     "c",
			reverse: true,
			want:    []string{"bb=2", "a=1"},
		},
		"only deleted keys": {
			start: "e",
			end:   "f",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, collect(t, cache, tc.start, tc.end, tc.reverse))
		})
	}
}

// RandomRanges compares iteration over random cache wraps with a sorted
// reference of the merged content.
func (s *Suite) RandomRanges(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	key := func(n int) string { return fmt.Sprintf("%02x", n) }

	for round := 0; round < 20; round++ {
		base, cleanup := s.open()
		merged := map[string]string{}
		for i := 0; i < 30; i++ {
			k, v := key(rnd.Intn(64)), fmt.Sprintf("p%d", i)
			apply(t, base, k+"="+v)
			merged[k] = v
		}
		cache := base.CacheWrap()
		for i := 0; i < 30; i++ {
			k := key(rnd.Intn(64))
			if rnd.Intn(3) == 0 {
				apply(t, cache, "-"+k)
				delete(merged, k)
				continue
			}
			v := fmt.Sprintf("c%d", i)
			apply(t, cache, k+"="+v)
			merged[k] = v
		}

		lo := rnd.Intn(64)
		start, end := key(lo), key(lo+1+rnd.Intn(64-lo))
		var want []string
		for k, v := range merged {
			if k >= start && k < end {
				want = append(want, k+"="+v)
			}
		}
		sort.Strings(want)
		assert.Equal(t, want, collect(t, cache, start, end, false), "round %d", round)
		sort.Sort(sort.Reverse(sort.StringSlice(want)))
		assert.Equal(t, want, collect(t, cache, start, end, true), "round %d", round)

		cache.Discard()
		cleanup()
	}
}

// IteratorRelease checks that a store can be modified right after an
// iterator over it was released early.
func (s *Suite) IteratorRelease(t *testing.T) {
	for _, reverse := range []bool{false, true} {
		base, cleanup := s.open()
		apply(t, base, "a=1", "b=1")
		cache := base.CacheWrap()
		apply(t, cache, "c=2")

		iterate := cache.Iterator
		if reverse {
			iterate = cache.ReverseIterator
		}
		it, err := iterate(nil, nil)
		require.NoError(t, err)
		_, _, err = it.Next()
		require.NoError(t, err)
		it.Release()

		apply(t, cache, "-a", "-c")
		require.NoError(t, cache.Write())
		apply(t, base, "b=3")
		assertState(t, base, kv{"a": "", "b": "3", "c": ""})
		cleanup()
	}
}
