package cash

import "github.com/iov-one/barter/errors"

// ErrDeposit is returned when a reserve cannot cover a storage deposit.
var ErrDeposit = errors.Register(40, "insufficient deposit")
