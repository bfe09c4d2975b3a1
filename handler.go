package barter

import (
	"context"
	"encoding/json"
)

// Handler is a core engine that can process a few specific messages.
// This could represent "open an escrow", or "send tokens between holdings".
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Checker interface {
	Check(ctx context.Context, db KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Deliverer interface {
	Deliver(ctx context.Context, db KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality
// like authentication, or logging, to many Handlers
type Decorator interface {
	Check(ctx context.Context, db KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx context.Context, db KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry is an interface to register your handler,
// the setup side of a Router
type Registry interface {
	Handle(path string, h Handler)
}

// CheckResult captures any non-error result of a check.
type CheckResult struct {
	// Data is a machine-parseable return value, like the key of a created
	// object.
	Data []byte
	// Log is human-readable informational string
	Log string
}

// DeliverResult captures any non-error result of a deliver.
type DeliverResult struct {
	// Data is a machine-parseable return value, like the key of a created
	// object.
	Data []byte
	// Log is human-readable informational string
	Log string
}

// Options are the app options
// Each extension can look up it's key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	return json.Unmarshal(msg, obj)
}

// Initializer implementations are used to initialize
// extensions from genesis file contents
type Initializer interface {
	FromGenesis(opts Options, db KVStore) error
}

// ChainInitializers lets you initialize many extensions at once
type ChainInitializers []Initializer

// FromGenesis passes the options to every initializer in order,
// stopping at the first error.
func (c ChainInitializers) FromGenesis(opts Options, db KVStore) error {
	for _, i := range c {
		if err := i.FromGenesis(opts, db); err != nil {
			return err
		}
	}
	return nil
}
