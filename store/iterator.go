package store

import (
	"bytes"

	"github.com/iov-one/barter/errors"
)

// source marks where the next item comes from
type source int32

const (
	us source = iota
	parent
	both
)

// cacheIter merges a snapshot of the cache items with the iterator of the
// backing store, taking into consideration overwrites and deletes.
type cacheIter struct {
	items   []keyer
	idx     int
	reverse bool

	parent  Iterator
	pKey    []byte
	pValue  []byte
	pLoaded bool
	pDone   bool
}

var _ Iterator = (*cacheIter)(nil)

func newCacheIter(items []keyer, parent Iterator, reverse bool) *cacheIter {
	return &cacheIter{
		items:   items,
		parent:  parent,
		reverse: reverse,
	}
}

// Next returns the next key and value, or ErrIteratorDone once both the
// cache and the backing store are exhausted.
func (c *cacheIter) Next() ([]byte, []byte, error) {
	for {
		if err := c.loadParent(); err != nil {
			return nil, nil, err
		}
		var item keyer
		if c.idx < len(c.items) {
			item = c.items[c.idx]
		}
		if item == nil && c.pDone {
			return nil, nil, errors.ErrIteratorDone
		}

		switch c.firstKey(item) {
		case parent:
			c.pLoaded = false
			return c.pKey, c.pValue, nil
		case both:
			// cache shadows the backing store
			c.pLoaded = false
			fallthrough
		case us:
			c.idx++
			if set, ok := item.(setItem); ok {
				return set.key, set.value, nil
			}
			// deleted, keep going
		}
	}
}

// Release releases the Iterator.
func (c *cacheIter) Release() {
	c.items = nil
	if c.parent != nil {
		c.parent.Release()
	}
}

func (c *cacheIter) loadParent() error {
	if c.pLoaded || c.pDone {
		return nil
	}
	if c.parent == nil {
		c.pDone = true
		return nil
	}
	key, value, err := c.parent.Next()
	switch {
	case errors.ErrIteratorDone.Is(err):
		c.pDone = true
		return nil
	case err != nil:
		return err
	}
	c.pKey, c.pValue, c.pLoaded = key, value, true
	return nil
}

// firstKey selects the source holding the next key in iteration order
func (c *cacheIter) firstKey(item keyer) source {
	if item == nil {
		return parent
	}
	if c.pDone {
		return us
	}
	cmp := bytes.Compare(item.Key(), c.pKey)
	if c.reverse {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return us
	case cmp > 0:
		return parent
	default:
		return both
	}
}
