package cash

import (
	"github.com/iov-one/barter/codec"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/gconf"
)

const configurationName = "Configuration"

// Configuration of the cash extension.
type Configuration struct {
	// AccountDeposit is charged to the payer when a holding is allocated
	// and refunded when the holding is closed.
	AccountDeposit uint64 `json:"account_deposit"`
}

func (c *Configuration) Marshal() ([]byte, error) {
	return codec.NewWriter(configurationName, 1).Uint64(c.AccountDeposit).Done(), nil
}

func (c *Configuration) Unmarshal(raw []byte) error {
	r, _, err := codec.NewReader(raw, configurationName, 1)
	if err != nil {
		return err
	}
	c.AccountDeposit = r.Uint64("account_deposit")
	return r.Done()
}

func (c *Configuration) Validate() error {
	return nil
}

// loadConf returns the stored configuration. A ledger that was never
// configured charges no deposits.
func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "cash", &conf); err != nil && !errors.ErrNotFound.Is(err) {
		return conf, errors.Wrap(err, "load configuration")
	}
	return conf, nil
}
