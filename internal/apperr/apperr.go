// Package apperr defines the error kinds services return and how they map to
// HTTP statuses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidState
	KindNotFound
	KindForbidden
	KindConflict
	KindUnauthorized
	KindRateLimited
	KindUnavailable
)

var kindStatus = map[Kind]int{
	KindInternal:     http.StatusInternalServerError,
	KindValidation:   http.StatusBadRequest,
	KindInvalidState: http.StatusBadRequest,
	KindNotFound:     http.StatusNotFound,
	KindForbidden:    http.StatusForbidden,
	KindConflict:     http.StatusConflict,
	KindUnauthorized: http.StatusUnauthorized,
	KindRateLimited:  http.StatusTooManyRequests,
	KindUnavailable:  http.StatusServiceUnavailable,
}

func (k Kind) Status() int {
	if status, ok := kindStatus[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

var kindNames = map[Kind]string{
	KindInternal:     "internal",
	KindValidation:   "validation",
	KindInvalidState: "invalid_state",
	KindNotFound:     "not_found",
	KindForbidden:    "forbidden",
	KindConflict:     "conflict",
	KindUnauthorized: "unauthorized",
	KindRateLimited:  "rate_limited",
	KindUnavailable:  "unavailable",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Status() int {
	return e.Kind.Status()
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func InvalidState(format string, args ...any) *Error {
	return newf(KindInvalidState, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newf(KindForbidden, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newf(KindConflict, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return newf(KindUnauthorized, format, args...)
}

func RateLimited(format string, args ...any) *Error {
	return newf(KindRateLimited, format, args...)
}

func Unavailable(format string, args ...any) *Error {
	return newf(KindUnavailable, format, args...)
}

// Internal wraps an unexpected failure. The message is safe to show in
// development only.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// From returns err as an *Error, treating anything unrecognised as Internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal server error", err)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
