package domain

import (
	"errors"
	"net/http"
)

// ErrorKind classifies failures surfaced to API callers.
type ErrorKind string

const (
	KindUnauthenticated  ErrorKind = "unauthenticated"
	KindInvalidToken     ErrorKind = "invalid_token"
	KindUserNotFound     ErrorKind = "user_not_found"
	KindForbidden        ErrorKind = "forbidden"
	KindNotFound         ErrorKind = "not_found"
	KindConflict         ErrorKind = "conflict"
	KindValidationFailed ErrorKind = "validation_failed"
	KindInternal         ErrorKind = "internal"
)

var kindStatus = map[ErrorKind]int{
	KindUnauthenticated:  http.StatusUnauthorized,
	KindInvalidToken:     http.StatusUnauthorized,
	KindUserNotFound:     http.StatusUnauthorized,
	KindForbidden:        http.StatusForbidden,
	KindNotFound:         http.StatusNotFound,
	KindConflict:         http.StatusConflict,
	KindValidationFailed: http.StatusUnprocessableEntity,
	KindInternal:         http.StatusInternalServerError,
}

// Error is a classified API error. Err keeps the underlying cause for logs only.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Status: kindStatus[kind], Message: message, Err: cause}
}

func Unauthenticated(message string) *Error { return newError(KindUnauthenticated, message, nil) }
func InvalidToken(message string) *Error    { return newError(KindInvalidToken, message, nil) }
func UserNotFound(message string) *Error    { return newError(KindUserNotFound, message, nil) }
func Forbidden(message string) *Error       { return newError(KindForbidden, message, nil) }
func NotFound(message string) *Error        { return newError(KindNotFound, message, nil) }
func Conflict(message string) *Error        { return newError(KindConflict, message, nil) }
func ValidationFailed(message string) *Error {
	return newError(KindValidationFailed, message, nil)
}

// Internal wraps cause; the message is what the caller sees.
func Internal(message string, cause error) *Error {
	return newError(KindInternal, message, cause)
}

// AsError returns the classified error carried by err, or relabels it as Internal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("internal server error", err)
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}
