package orm

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

func (mb *modelBucket) Register(name string, r barter.QueryRouter) {
	root := "/" + name
	r.Register(root, bucketQuery{mb})
	for indexName, idx := range mb.indexes {
		r.Register(root+"/"+indexName, indexQuery{mb: mb, idx: idx})
	}
}

// bucketQuery handles key and prefix queries of the bucket content.
type bucketQuery struct {
	mb *modelBucket
}

func (q bucketQuery) Query(db barter.ReadOnlyKVStore, mod string, data []byte) ([]barter.Model, error) {
	switch mod {
	case barter.KeyQueryMod:
		raw, err := db.Get(q.mb.dbKey(data))
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
		if raw == nil {
			return nil, nil
		}
		return []barter.Model{barter.Pair(data, raw)}, nil
	case barter.PrefixQueryMod:
		it, err := newPrefixIterator(db, q.mb.dbKey(data))
		if err != nil {
			return nil, err
		}
		models, err := ConsumeIterator(it)
		if err != nil {
			return nil, err
		}
		// keys are relative to the bucket, not to the queried prefix
		for i := range models {
			models[i].Key = append(append([]byte(nil), data...), models[i].Key...)
		}
		return models, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod %q", mod)
	}
}

// indexQuery returns all models indexed under the queried value.
type indexQuery struct {
	mb  *modelBucket
	idx index
}

func (q indexQuery) Query(db barter.ReadOnlyKVStore, mod string, data []byte) ([]barter.Model, error) {
	if mod != barter.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod %q", mod)
	}
	keys, err := q.idx.keys(db, data)
	if err != nil {
		return nil, err
	}
	res := make([]barter.Model, 0, len(keys))
	for _, key := range keys {
		raw, err := db.Get(q.mb.dbKey(key))
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
		res = append(res, barter.Pair(key, raw))
	}
	return res, nil
}
