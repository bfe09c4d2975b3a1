/*
Package errors implements custom error interfaces for barter.

The idea is to reuse as many errors from this package as possible and define
custom package errors only when absolutely necessary. If you want to register
a custom error use Register(code, description); x/escrow does that for the
errors that only an escrow can produce.

For reusing errors use ErrXyz.New / ErrXyz.Newf or Wrap(ErrXyz, "...").
The code allows to distinguish types of errors on the client side and act
accordingly.

There is also support for stacktraces. Create the error using ErrXyz.New("...")
or Wrap(err, "...") at the point of creation to attach a stacktrace. Only the
first wrap records one.

	%s is just the error message
	%+v is the full stack trace
*/
package errors
