package sigs

import "github.com/iov-one/barter/errors"

// ErrInvalidSequence is returned when a signature does not carry the
// expected nonce.
var ErrInvalidSequence = errors.Register(20, "invalid sequence number")
