package shared

import "errors"

// ErrorKind classifies a domain error for callers and transports
type ErrorKind string

const (
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindConflict   ErrorKind = "CONFLICT"
	KindForbidden  ErrorKind = "FORBIDDEN"
	KindBadRequest ErrorKind = "BAD_REQUEST"
	KindInternal   ErrorKind = "INTERNAL"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string    `json:"code"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches domain errors by code so that errors carrying a contextual
// message still compare equal to the package sentinels.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of the error with a more specific message
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Code: e.Code, Kind: e.Kind, Message: message, cause: e.cause}
}

// NewDomainError creates a new domain error of kind BAD_REQUEST
func NewDomainError(code, message string) *DomainError {
	return NewKindError(KindBadRequest, code, message)
}

// NewKindError creates a domain error with an explicit kind
func NewKindError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Internal wraps an unexpected infrastructure failure
func Internal(message string, cause error) *DomainError {
	return &DomainError{
		Code:    "INTERNAL_ERROR",
		Kind:    KindInternal,
		Message: message,
		cause:   cause,
	}
}

// KindOf returns the kind of err, treating anything that is not a
// DomainError as internal.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Common domain errors
var (
	ErrNotFound            = NewKindError(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewKindError(KindConflict, "ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewKindError(KindBadRequest, "INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewKindError(KindConflict, "CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrForbidden           = NewKindError(KindForbidden, "FORBIDDEN", "Operation is not permitted")
	ErrInvalidState        = NewKindError(KindForbidden, "INVALID_STATE", "Operation not allowed in current state")
)
