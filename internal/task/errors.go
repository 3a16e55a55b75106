package task

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure categories surfaced to callers.
type ErrorKind string

const (
	ErrorKindEmptyInput    ErrorKind = "empty_input"
	ErrorKindInvalidInput  ErrorKind = "invalid_input"
	ErrorKindNoCredential  ErrorKind = "no_credential"
	ErrorKindUnauthorized  ErrorKind = "unauthorized"
	ErrorKindRateLimited   ErrorKind = "rate_limited"
	ErrorKindRegionBlocked ErrorKind = "region_blocked"
	ErrorKindUnknown       ErrorKind = "unknown"
	ErrorKindBadResponse   ErrorKind = "bad_response"
)

// ErrorKinds lists every kind in a stable order.
func ErrorKinds() []ErrorKind {
	return []ErrorKind{
		ErrorKindEmptyInput,
		ErrorKindInvalidInput,
		ErrorKindNoCredential,
		ErrorKindUnauthorized,
		ErrorKindRateLimited,
		ErrorKindRegionBlocked,
		ErrorKindUnknown,
		ErrorKindBadResponse,
	}
}

// Error is the only error type returned by the orchestrator. Diagnostic is a
// human-readable detail for an explicit diagnostics view; it never holds the
// raw credential.
type Error struct {
	Kind       ErrorKind
	Diagnostic string
	Err        error
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrEmptyInput    = &Error{Kind: ErrorKindEmptyInput}
	ErrInvalidInput  = &Error{Kind: ErrorKindInvalidInput}
	ErrNoCredential  = &Error{Kind: ErrorKindNoCredential}
	ErrUnauthorized  = &Error{Kind: ErrorKindUnauthorized}
	ErrRateLimited   = &Error{Kind: ErrorKindRateLimited}
	ErrRegionBlocked = &Error{Kind: ErrorKindRegionBlocked}
	ErrUnknown       = &Error{Kind: ErrorKindUnknown}
	ErrBadResponse   = &Error{Kind: ErrorKindBadResponse}
)

// ErrIntensityOutOfRange is wrapped by the InvalidInput error an emotion
// request returns when its intensity is outside [MinIntensity, MaxIntensity].
var ErrIntensityOutOfRange = errors.New("intensity out of range")

func (e *Error) Error() string {
	switch {
	case e.Diagnostic != "":
		return fmt.Sprintf("task: %s: %s", e.Kind, e.Diagnostic)
	case e.Err != nil:
		return fmt.Sprintf("task: %s: %v", e.Kind, e.Err)
	default:
		return "task: " + string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Retryable reports whether a caller may reasonably retry after a delay.
// Only rate limiting qualifies; nothing in this module retries on its own.
func (e *Error) Retryable() bool {
	return e.Kind == ErrorKindRateLimited
}

// KindOf extracts the ErrorKind of err, or ErrorKindUnknown when err is not a
// *Error.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ErrorKindUnknown
}
