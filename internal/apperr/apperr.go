// Package apperr defines the structured error taxonomy surfaced to API
// callers: a kind driving the HTTP status, a stable machine-readable code,
// and a human message.
package apperr

import "errors"

// Kind classifies an error for transport mapping.
type Kind int

const (
	// KindInternal is the fallback for infrastructure failures.
	KindInternal Kind = iota
	// KindNotFound marks a missing entity.
	KindNotFound
	// KindInvalid marks a malformed argument or an invalid state.
	KindInvalid
	// KindConflict marks an operation rejected by the current state.
	KindConflict
	// KindForbidden marks an authorization failure.
	KindForbidden
)

// Error is a structured application error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound builds a missing-entity error.
func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// Invalid builds a malformed-argument or invalid-state error.
func Invalid(code, message string) *Error {
	return &Error{Kind: KindInvalid, Code: code, Message: message}
}

// Conflict builds a state-conflict error.
func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// Forbidden builds an authorization error.
func Forbidden(code, message string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: message}
}

// Internal wraps an infrastructure failure. The cause is kept for logs but
// never leaks into the client message.
func Internal(code, message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: code, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf extracts the machine code from an error chain, or "" when absent.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
