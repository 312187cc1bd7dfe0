// Package domainerror defines the error taxonomy shared by the engine.
//
// Every failure surfaced to a caller is one of four kinds:
//   - KindValidation: malformed or missing input, never retried
//   - KindNotFound: a referenced row does not exist
//   - KindConflict: the write collides with existing state
//   - KindStore: the underlying persistence layer failed
//
// The HTTP layer maps kinds to status codes; everything else should use
// errors.As / KindOf to branch on failures.
package domainerror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for caller-side handling.
type Kind string

const (
	KindValidation Kind = "validation_error"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindStore      Kind = "store_error"
)

// Error is a kinded domain error with an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// NotFound creates a not-found error for the named resource.
func NotFound(resource string) *Error {
	return New(KindNotFound, resource+" not found")
}

// Conflict creates a conflict error.
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Store wraps a persistence failure.
func Store(message string, err error) *Error {
	return Wrap(KindStore, message, err)
}

// KindOf returns the kind of err, or an empty Kind for non-domain errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
