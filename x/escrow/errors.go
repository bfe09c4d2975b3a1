package escrow

import "github.com/iov-one/barter/errors"

var (
	// ErrUnauthorized is returned when the signer is not the party the
	// operation requires.
	ErrUnauthorized = errors.ErrUnauthorized
	// ErrAssetTypeMismatch is returned when a holding keeps another asset
	// than the one expected.
	ErrAssetTypeMismatch = errors.ErrCurrency
	// ErrInsufficientBalance is returned when a holding cannot cover the
	// amount to move.
	ErrInsufficientBalance = errors.ErrInsufficientAmount

	ErrWrongDestination = errors.Register(30, "wrong destination")
	ErrRecordNotFound   = errors.Register(31, "escrow record not found")
	ErrAddressCollision = errors.Register(32, "address collision")
)
