// Package apperr defines the error taxonomy shared by the attendance engine.
// Every failure that can reach a caller is one of these kinds; handlers map
// kinds to HTTP statuses and machine codes without inspecting messages.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindSessionClosed
	KindOutOfRange
	KindDuplicate
	KindLocationUnavailable
	KindStore
)

// Error carries a machine code plus the measured values a client needs to
// render a precise message. Distance is set on range-related failures.
type Error struct {
	Kind     Kind
	Code     string
	Message  string
	Distance *float64
	cause    error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func SessionClosed() *Error {
	return &Error{Kind: KindSessionClosed, Code: "session_closed", Message: "session is no longer accepting attendance"}
}

func Duplicate(code, message string) *Error {
	return &Error{Kind: KindDuplicate, Code: code, Message: message}
}

func LocationUnavailable() *Error {
	return &Error{Kind: KindLocationUnavailable, Code: "location_unavailable", Message: "device did not supply a coordinate"}
}

// OutOfRange is used by the strict submission variant; the default policy
// records out-of-range attempts unverified instead of rejecting them.
func OutOfRange(distance float64) *Error {
	d := distance
	return &Error{Kind: KindOutOfRange, Code: "out_of_range", Message: "measured distance exceeds the verification threshold", Distance: &d}
}

// Store wraps an infrastructure failure. Safe to retry the whole operation:
// the duplicate check is atomic with the insert.
func Store(err error) *Error {
	return &Error{Kind: KindStore, Code: "store_error", Message: "persistent store failure", cause: err}
}

// KindOf classifies any error, returning KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
