/*
Package iavl persists the ledger state in a versioned merkle tree.

Units of work are applied to a btree cache wrap over the working tree and
written to it only when they succeed. Commit saves the working tree as a
new version and returns its root hash.
*/
package iavl

import (
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// DefaultCacheSize is the number of iavl nodes kept in memory.
const DefaultCacheSize = 10000

// CommitStore manages an iavl committed state
type CommitStore struct {
	db   dbm.DB
	tree *iavl.MutableTree
}

var _ store.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore creates a new store with goleveldb backing, kept in
// <dir>/<name>.db
func NewCommitStore(dir, name string) (*CommitStore, error) {
	return NewCommitStoreWithBackend(dir, name, dbm.GoLevelDBBackend)
}

// NewCommitStoreWithBackend creates a new store kept in <dir>/<name>.db
// using given database backend.
func NewCommitStoreWithBackend(dir, name string, backend dbm.DBBackendType) (*CommitStore, error) {
	db, err := openDB(name, backend, dir)
	if err != nil {
		return nil, err
	}
	return NewCommitStoreFromDB(db), nil
}

// NewMemCommitStore creates a new store that keeps everything in memory.
func NewMemCommitStore() *CommitStore {
	return NewCommitStoreFromDB(dbm.NewMemDB())
}

// NewCommitStoreFromDB creates a new store over the given database.
func NewCommitStoreFromDB(db dbm.DB) *CommitStore {
	return &CommitStore{
		db:   db,
		tree: iavl.NewMutableTree(db, DefaultCacheSize),
	}
}

// Close releases the underlying database. Uncommitted changes are lost.
func (s *CommitStore) Close() error {
	s.db.Close()
	return nil
}

func openDB(name string, backend dbm.DBBackendType, dir string) (db dbm.DB, err error) {
	// unknown backends and unusable directories panic
	defer errors.Recover(&err)
	return dbm.NewDB(name, backend, dir), nil
}

// Get returns the value at last committed state
// returns nil iff key doesn't exist.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	if key == nil {
		return nil, errors.Wrap(errors.ErrInput, "nil key")
	}
	_, val := s.tree.GetVersioned(key, s.tree.Version())
	return val, nil
}

// Commit the next version to disk, and returns info
func (s *CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return store.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s *CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s *CommitStore) LatestVersion() (store.CommitID, error) {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// CacheWrap gives us a savepoint to perform actions. Writing it applies
// the changes to the working tree, that is persisted with the next Commit.
func (s *CommitStore) CacheWrap() store.KVCacheWrap {
	return s.Adapter().CacheWrap()
}

// Adapter returns the working tree as a KVStore. Changes made through it
// are visible immediately and persisted with the next Commit.
func (s *CommitStore) Adapter() store.CacheableKVStore {
	return store.BTreeCacheable{KVStore: adapter{tree: s.tree}}
}

// adapter exposes the working tree as a KVStore
type adapter struct {
	tree *iavl.MutableTree
}

var _ store.KVStore = adapter{}

// Get returns nil iff key doesn't exist.
func (a adapter) Get(key []byte) ([]byte, error) {
	if key == nil {
		return nil, errors.Wrap(errors.ErrInput, "nil key")
	}
	_, val := a.tree.Get(key)
	return val, nil
}

// Has checks if a key exists.
func (a adapter) Has(key []byte) (bool, error) {
	if key == nil {
		return false, errors.Wrap(errors.ErrInput, "nil key")
	}
	return a.tree.Has(key), nil
}

// Set adds a new value
func (a adapter) Set(key, value []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrInput, "nil key")
	}
	// the tree does not accept nil values
	if value == nil {
		value = []byte{}
	}
	a.tree.Set(key, value)
	return nil
}

// Delete removes from the tree
func (a adapter) Delete(key []byte) error {
	a.tree.Remove(key)
	return nil
}

// NewBatch returns a batch that writes to the working tree
func (a adapter) NewBatch() store.Batch {
	return store.NewNonAtomicBatch(a)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
// The range is read eagerly, so writes made while iterating are not seen.
func (a adapter) Iterator(start, end []byte) (store.Iterator, error) {
	return a.iterate(start, end, true), nil
}

// ReverseIterator over a domain of keys in descending order. End is exclusive.
func (a adapter) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return a.iterate(start, end, false), nil
}

func (a adapter) iterate(start, end []byte, ascending bool) store.Iterator {
	var res []store.Model
	a.tree.IterateRange(start, end, ascending, func(key []byte, value []byte) bool {
		res = append(res, store.Pair(key, value))
		return false
	})
	return store.NewSliceIterator(res)
}
