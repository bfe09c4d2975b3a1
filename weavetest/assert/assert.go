// Package assert holds the assertions shared by the handler, controller and
// ledger tests. Every helper stops the test at the first failure.
package assert

import (
	"reflect"
)

// TB is the part of testing.TB the helpers use.
type TB interface {
	Helper()
	Fatalf(format string, args ...interface{})
}

// Nil fails unless got is nil or a nil pointer, map, slice, channel or
// function. Errors are printed with their stack trace.
func Nil(t TB, got interface{}) {
	t.Helper()
	if isNil(got) {
		return
	}
	if err, ok := got.(error); ok {
		t.Fatalf("unexpected error: %+v", err)
		return
	}
	t.Fatalf("want nil, got %T %v", got, got)
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// Equal fails unless both values are deeply equal and of the same type.
func Equal(t TB, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("not equal\nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// Panics fails unless fn panics. The recovered value is returned.
func Panics(t TB, fn func()) (recovered interface{}) {
	t.Helper()
	defer func() {
		recovered = recover()
		if recovered == nil {
			t.Fatalf("want a panic")
		}
	}()
	fn()
	return nil
}

// IsErr fails unless got is of the want kind. Registered errors match any
// error that wraps them; a nil want accepts only a nil got.
func IsErr(t TB, want, got error) {
	t.Helper()
	switch kind := want.(type) {
	case nil:
		if got == nil {
			return
		}
	case interface{ Is(error) bool }:
		if kind.Is(got) {
			return
		}
	default:
		if want == got {
			return
		}
	}
	t.Fatalf("want %v error, got %+v", want, got)
}
