package cachecore

import "github.com/pkg/errors"

// InvariantError marks a bug in the caller or in this package: a mismatched
// link_id, an out-of-range page class, or a clock that moved backward. These
// are not usage errors (those surface as absent results, never as an error
// value) and
// are never returned; they are always raised via panic so that a host
// embedding this engine can recover() at its FFI boundary and still see a
// stack trace.
type InvariantError struct {
	cause error
}

func (e *InvariantError) Error() string { return e.cause.Error() }

func (e *InvariantError) Unwrap() error { return e.cause }

// panicInvariant raises an InvariantError carrying a stack trace captured at
// the call site.
func panicInvariant(format string, args ...interface{}) {
	panic(&InvariantError{cause: errors.WithStack(errors.Errorf(format, args...))})
}
