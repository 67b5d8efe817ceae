// errors.go - Error taxonomy shared by handlers, repositories and middleware

package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// Kind is the stable, machine readable error code sent to clients.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindRateLimited       Kind = "rate_limited"
	KindResourceExhausted Kind = "resource_exhausted"
	KindInternal          Kind = "internal"
)

// Error is the error type every layer returns to the HTTP boundary.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string // per-field validation messages
	Err     error             // underlying cause, never shown to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindResourceExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Validation(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(KindForbidden, msg) }
func NotFound(msg string) *Error     { return New(KindNotFound, msg) }
func Conflict(msg string) *Error     { return New(KindConflict, msg) }

func Exhausted(msg string, err error) *Error {
	return &Error{Kind: KindResourceExhausted, Message: msg, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// As extracts an *Error from err. Anything that is not one becomes Internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// FromDB classifies a storage error. notFoundMsg is used when the record is
// missing, so callers can name the entity ("article not found").
func FromDB(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Message: notFoundMsg, Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return &Error{Kind: KindConflict, Message: "resource already exists", Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &Error{Kind: KindConflict, Message: "resource is referenced by other records", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindResourceExhausted, Message: "database operation timed out", Err: err}
	}
	return Internal(err)
}

// Some drivers do not translate every unique violation, so fall back to the
// message text used by sqlite and postgres.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key value")
}
