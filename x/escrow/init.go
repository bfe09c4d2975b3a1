package escrow

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/gconf"
)

// Initializer loads the escrow configuration from the genesis file.
type Initializer struct{}

var _ barter.Initializer = Initializer{}

// FromGenesis stores the "escrow" configuration, if any.
func (Initializer) FromGenesis(opts barter.Options, db barter.KVStore) error {
	var conf Configuration
	if err := gconf.InitConfig(db, opts, "escrow", &conf); err != nil && !errors.ErrNotFound.Is(err) {
		return errors.Wrap(err, "init config")
	}
	return nil
}
