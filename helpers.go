package barter

import (
	"reflect"

	"github.com/iov-one/barter/errors"
)

// assignMsg copies the value msg points to into destination. Both must be
// non nil pointers of the same type.
func assignMsg(msg Msg, destination interface{}) error {
	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr {
		return errors.Wrapf(errors.ErrType, "destination must be a pointer, got %T", destination)
	}
	if dest.IsNil() {
		return errors.Wrap(errors.ErrType, "destination is nil")
	}
	src := reflect.ValueOf(msg)
	if src.Type() != dest.Type() {
		return errors.Wrapf(errors.ErrType, "want %T message, got %T", destination, msg)
	}
	if src.IsNil() {
		return errors.Wrap(errors.ErrState, "nil message")
	}
	dest.Elem().Set(src.Elem())
	return nil
}
