package orm

import (
	"encoding/binary"
	"regexp"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

const indexPrefix = "_i."

// Indexer calculates the secondary index value of a model. A nil value
// means the model is not indexed.
type Indexer func(Model) ([]byte, error)

var isIndexName = regexp.MustCompile(`^[a-z_]{3,20}$`).MatchString

// index keeps one store entry per indexed model.
type index struct {
	name    string
	prefix  []byte
	indexer Indexer
}

func newIndex(bucket, name string, indexer Indexer) index {
	if !isIndexName(name) {
		panic("invalid index name: " + name)
	}
	return index{
		name:    name,
		prefix:  []byte(indexPrefix + bucket + "_" + name + ":"),
		indexer: indexer,
	}
}

// valuePrefix returns the prefix under which all keys indexed with the
// given value are stored. The value length is part of the prefix, so that
// a value can never be a prefix of a longer one.
func (i index) valuePrefix(value []byte) []byte {
	var n [binary.MaxVarintLen64]byte
	size := binary.PutUvarint(n[:], uint64(len(value)))
	p := make([]byte, 0, len(i.prefix)+size+len(value))
	p = append(p, i.prefix...)
	p = append(p, n[:size]...)
	return append(p, value...)
}

// update moves the index entry of key from what prev is indexed under to
// what next is indexed under. A nil prev means insert, a nil next delete.
func (i index) update(db barter.KVStore, key []byte, prev, next Model) error {
	var old, cur []byte
	var err error
	if prev != nil {
		if old, err = i.indexer(prev); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	if next != nil {
		if cur, err = i.indexer(next); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	if old != nil {
		if err := db.Delete(append(i.valuePrefix(old), key...)); err != nil {
			return errors.Wrap(errors.ErrDatabase, err.Error())
		}
	}
	if cur != nil {
		if err := db.Set(append(i.valuePrefix(cur), key...), []byte{1}); err != nil {
			return errors.Wrap(errors.ErrDatabase, err.Error())
		}
	}
	return nil
}

// keys returns all primary keys indexed under value, in ascending order.
func (i index) keys(db barter.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	it, err := newPrefixIterator(db, i.valuePrefix(value))
	if err != nil {
		return nil, err
	}
	models, err := ConsumeIterator(it)
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, len(models))
	for n, m := range models {
		keys[n] = m.Key
	}
	return keys, nil
}
