package escrow

import (
	"github.com/iov-one/barter/codec"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/gconf"
)

// Configuration of the escrow extension.
type Configuration struct {
	// RecordDeposit is charged to the maker when an escrow is opened
	// and refunded to the maker when it is settled.
	RecordDeposit uint64 `json:"record_deposit"`
}

func (c *Configuration) Marshal() ([]byte, error) {
	return codec.NewWriter("EscrowConfiguration", 1).Uint64(c.RecordDeposit).Done(), nil
}

func (c *Configuration) Unmarshal(raw []byte) error {
	r, _, err := codec.NewReader(raw, "EscrowConfiguration", 1)
	if err != nil {
		return err
	}
	c.RecordDeposit = r.Uint64("record_deposit")
	return r.Done()
}

func (c *Configuration) Validate() error {
	return nil
}

func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "escrow", &conf); err != nil && !errors.ErrNotFound.Is(err) {
		return conf, errors.Wrap(err, "load configuration")
	}
	return conf, nil
}
