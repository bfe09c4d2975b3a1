package orm

import (
	"reflect"
	"regexp"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	barter.Persistent
	Validate() error
}

// ModelSlicePtr represents a pointer to a slice of models. Think of it as
// *[]Model. Because of Go type system, using []Model type would not work
// for us. Instead we use a placeholder type and the validation is done
// during the runtime.
type ModelSlicePtr interface{}

// ModelBucket persists models of a single type.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	One(db barter.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key exists. It
	// returns ErrNotFound otherwise.
	Has(db barter.ReadOnlyKVStore, key []byte) error

	// ByIndex returns all models indexed under given value. Models are
	// appended to the slice destination points to and their primary keys
	// returned in the same order.
	ByIndex(db barter.ReadOnlyKVStore, indexName string, value []byte, dest ModelSlicePtr) ([][]byte, error)

	// Put saves given model in the database under given primary key and
	// updates all indexes.
	Put(db barter.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db barter.KVStore, key []byte) error

	// Register registers this bucket and all its indexes in the query
	// router, under "/<bucket>" and "/<bucket>/<index>".
	Register(name string, r barter.QueryRouter)
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIndex configures the bucket to build a secondary index of the given
// name using given indexer.
func WithIndex(name string, indexer Indexer) ModelBucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic("duplicated index: " + name)
		}
		mb.indexes[name] = newIndex(mb.name, name, indexer)
	}
}

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// NewModelBucket returns a ModelBucket instance storing models of the same
// type as example.
func NewModelBucket(name string, example Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic("invalid bucket name: " + name)
	}
	tp := reflect.TypeOf(example)
	if tp.Kind() != reflect.Ptr {
		panic("model must be a pointer")
	}
	mb := &modelBucket{
		name:    name,
		prefix:  []byte(name + ":"),
		model:   tp.Elem(),
		indexes: make(map[string]index),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	indexes map[string]index
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	return append(append([]byte(nil), mb.prefix...), key...)
}

func (mb *modelBucket) One(db barter.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != reflect.PtrTo(mb.model) {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %s", dest, mb.model)
	}
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "unmarshal %s", mb.name)
	}
	return nil
}

func (mb *modelBucket) Has(db barter.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) ByIndex(db barter.ReadOnlyKVStore, indexName string, value []byte, dest ModelSlicePtr) ([][]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "unknown index %q", indexName)
	}
	slice := reflect.ValueOf(dest)
	if slice.Kind() != reflect.Ptr || slice.Elem().Kind() != reflect.Slice {
		return nil, errors.Wrap(errors.ErrType, "destination must be a pointer to a slice of models")
	}
	elem := slice.Elem().Type().Elem()
	if elem != reflect.PtrTo(mb.model) && elem != mb.model {
		return nil, errors.Wrapf(errors.ErrType, "cannot store %s in %T", mb.model, dest)
	}

	keys, err := idx.keys(db, value)
	if err != nil {
		return nil, err
	}
	res := slice.Elem()
	for _, key := range keys {
		m := reflect.New(mb.model)
		if err := mb.One(db, key, m.Interface().(Model)); err != nil {
			return nil, errors.Wrapf(err, "index %s points to a missing entity", indexName)
		}
		if elem.Kind() == reflect.Ptr {
			res = reflect.Append(res, m)
		} else {
			res = reflect.Append(res, m.Elem())
		}
	}
	slice.Elem().Set(res)
	return keys, nil
}

func (mb *modelBucket) Put(db barter.KVStore, key []byte, m Model) error {
	if reflect.TypeOf(m) != reflect.PtrTo(mb.model) {
		return errors.Wrapf(errors.ErrType, "cannot store %T in %s bucket", m, mb.name)
	}
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	prev, err := mb.load(db, key)
	if err != nil {
		return err
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal")
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	for _, idx := range mb.indexes {
		if err := idx.update(db, key, prev, m); err != nil {
			return err
		}
	}
	return nil
}

func (mb *modelBucket) Delete(db barter.KVStore, key []byte) error {
	prev, err := mb.load(db, key)
	if err != nil {
		return err
	}
	if prev == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	for _, idx := range mb.indexes {
		if err := idx.update(db, key, prev, nil); err != nil {
			return err
		}
	}
	return nil
}

// load returns the stored model or nil if none is stored under key.
func (mb *modelBucket) load(db barter.ReadOnlyKVStore, key []byte) (Model, error) {
	m := reflect.New(mb.model).Interface().(Model)
	switch err := mb.One(db, key, m); {
	case err == nil:
		return m, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}
