// Package common defines shared constants and sentinel errors used across
// VaultGuard server layers. Callers should use errors.Is to match these
// values and KindOf to classify an error at a transport boundary.
package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Domain errors.
	ErrorAccessDenied = errors.New("access denied")
	ErrorInvalidState = errors.New("invalid state")
	ErrorValidation   = errors.New("validation failed")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrVersionConflict = errors.New("version conflict")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError carries per-field messages for structurally invalid input.
// It matches ErrorValidation via errors.Is.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns a ValidationError with a single field message.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

// Add appends a message for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty reports whether no field messages were collected.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	if e.Empty() {
		return ErrorValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return fmt.Sprintf("%s: %s", ErrorValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrorValidation
}

// Kind is the boundary classification of an error.
type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindAccessDenied
	KindInvalidState
	KindValidation
	KindConflict
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAccessDenied:
		return "access_denied"
	case KindInvalidState:
		return "invalid_state"
	case KindValidation:
		return "validation_failed"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "unexpected"
	}
}

// KindOf classifies err. Anything that does not wrap a known sentinel is
// KindUnexpected.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnexpected
	case errors.Is(err, ErrorNotFound):
		return KindNotFound
	case errors.Is(err, ErrorAccessDenied):
		return KindAccessDenied
	case errors.Is(err, ErrorValidation):
		return KindValidation
	case errors.Is(err, ErrorInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrVersionConflict):
		return KindConflict
	case errors.Is(err, ErrorUnauthorized), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
		return KindUnauthenticated
	default:
		return KindUnexpected
	}
}
