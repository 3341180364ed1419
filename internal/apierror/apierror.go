// Package apierror provides the error kinds shared by every layer and the
// response envelopes written to clients. Handlers translate a Kind into an HTTP
// status; internal causes (DB errors, stack traces) never reach the client.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable category of a domain error.
type Kind string

const (
	KindValidation Kind = "validation" // malformed or out-of-range input
	KindConflict   Kind = "conflict"   // business rule violation or duplicate key
	KindNotFound   Kind = "not_found"
	KindState      Kind = "state"   // operation invalid for the lifecycle state
	KindStorage    Kind = "storage" // persistence failure, may be retried
	KindForbidden  Kind = "forbidden"
)

// Error is a domain error carrying a Kind and a human-readable reason.
type Error struct {
	Kind   Kind
	Reason string
	Err    error // optional cause, never shown to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }
func Conflict(format string, args ...any) *Error   { return newf(KindConflict, format, args...) }
func NotFound(format string, args ...any) *Error   { return newf(KindNotFound, format, args...) }
func State(format string, args ...any) *Error      { return newf(KindState, format, args...) }
func Forbidden(format string, args ...any) *Error  { return newf(KindForbidden, format, args...) }

// Storage wraps a persistence failure.
func Storage(reason string, cause error) *Error {
	return &Error{Kind: KindStorage, Reason: reason, Err: cause}
}

// KindOf returns the Kind of err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err is a domain error of the given kind.
func Is(err error, kind Kind) bool { return err != nil && KindOf(err) == kind }

// ReasonOf returns the client-facing reason of err.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return "Internal server error"
}

// HTTPStatus maps a Kind to its response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict, KindState:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Kind   Kind   `json:"kind,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// FromError builds the envelope for err. Storage causes are replaced by a
// generic message.
func FromError(err error) *APIError {
	kind := KindOf(err)
	switch kind {
	case "":
		return &APIError{Detail: "Internal server error"}
	case KindStorage:
		return &APIError{Detail: "Storage temporarily unavailable", Kind: kind}
	default:
		return &APIError{Detail: ReasonOf(err), Kind: kind}
	}
}

// ValidationError wraps multiple field errors from request binding.
type ValidationError struct {
	Detail string            `json:"detail"`
	Kind   Kind              `json:"kind"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation error", Kind: KindValidation, Fields: fields}
}
