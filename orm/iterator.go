package orm

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// ConsumeIterator will read all remaining data into an
// array and release the iterator
func ConsumeIterator(it barter.Iterator) ([]barter.Model, error) {
	defer it.Release()

	var res []barter.Model
	for {
		key, value, err := it.Next()
		switch {
		case err == nil:
			res = append(res, barter.Pair(key, value))
		case errors.ErrIteratorDone.Is(err):
			return res, nil
		default:
			return nil, err
		}
	}
}

// prefixRange turns a prefix into (start, end) to define the range of
// keys that contain the prefix. end is nil when the prefix is all 0xFF.
func prefixRange(prefix []byte) ([]byte, []byte) {
	if prefix == nil {
		return nil, nil
	}
	start := append([]byte(nil), prefix...)
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return start, end[:i+1]
		}
	}
	return start, nil
}

// prefixIterator iterates over all keys with the given prefix and strips
// the prefix from the returned keys.
type prefixIterator struct {
	it     barter.Iterator
	prefix int
}

func newPrefixIterator(db barter.ReadOnlyKVStore, prefix []byte) (barter.Iterator, error) {
	start, end := prefixRange(prefix)
	it, err := db.Iterator(start, end)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return &prefixIterator{it: it, prefix: len(prefix)}, nil
}

func (p *prefixIterator) Next() ([]byte, []byte, error) {
	key, value, err := p.it.Next()
	if err != nil {
		return nil, nil, err
	}
	return key[p.prefix:], value, nil
}

func (p *prefixIterator) Release() {
	p.it.Release()
}
