// Package apperr defines the error kinds shared by the service and
// handler layers. Services raise the most specific kind they can;
// handlers are the only place a kind is turned into an HTTP status.
package apperr

import "errors"

// Kind classifies an expected failure.
type Kind int

const (
	KindInternal Kind = iota // unexpected failure (store unreachable etc.)
	KindValidation
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
)

// Error carries a kind and a caller-safe message. Err, when set, holds
// the underlying cause for logging; it is never sent to the client.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation marks malformed input.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// Conflict marks a uniqueness violation.
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

// Unauthorized marks a missing, invalid or expired credential.
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

// Forbidden marks an authenticated but not permitted request.
func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

// NotFound marks an absent resource, or one deliberately hidden from
// a caller who is not allowed to learn it exists.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// Internal wraps an unexpected failure with a safe message.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
