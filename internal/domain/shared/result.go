package shared

import "errors"

// ErrEmptyReason is used when a failed Result is built without a reason.
var ErrEmptyReason = errors.New("shared: operation failed")

// Result is the outcome of a remote operation: either a value, or a failure
// carrying the reason. The zero value is a failure.
type Result[T any] struct {
	value T
	err   error
	ok    bool
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Fail wraps a failure reason.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = ErrEmptyReason
	}
	return Result[T]{err: err}
}

// Failf is Fail with a DomainError built from code and message.
func Failf[T any](code, message string) Result[T] {
	return Fail[T](NewDomainError(code, message))
}

// IsOk reports success.
func (r Result[T]) IsOk() bool {
	return r.ok
}

// Value returns the wrapped value and whether the result succeeded.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.ok
}

// Err returns the failure reason, or nil on success.
func (r Result[T]) Err() error {
	if r.ok {
		return nil
	}
	if r.err == nil {
		return ErrEmptyReason
	}
	return r.err
}

// Unwrap converts the result into the usual (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.Err()
}

// MapResult transforms the value of a successful result.
func MapResult[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.ok {
		return Fail[U](r.Err())
	}
	return Ok(fn(r.value))
}
