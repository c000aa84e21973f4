package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error for transport mapping and retry decisions
type ErrorKind string

const (
	KindValidation     ErrorKind = "VALIDATION"
	KindConflict       ErrorKind = "CONFLICT"
	KindNotFound       ErrorKind = "NOT_FOUND"
	KindInvalidState   ErrorKind = "INVALID_STATE"
	KindInfrastructure ErrorKind = "INFRASTRUCTURE"
)

// Error is a domain-level error with a machine-readable kind and code
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause, if any
func (e *Error) Unwrap() error {
	return e.cause
}

// NewValidationError reports user-correctable bad or out-of-range input
func NewValidationError(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// NewConflictError reports an operation colliding with existing state
func NewConflictError(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// NewNotFoundError reports a missing resource
func NewNotFoundError(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// NewInvalidStateError reports an operation not legal for the current status
func NewInvalidStateError(code, message string) *Error {
	return &Error{Kind: KindInvalidState, Code: code, Message: message}
}

// NewInfrastructureError wraps a storage or transport failure; retryable by the caller
func NewInfrastructureError(code, message string, cause error) *Error {
	return &Error{Kind: KindInfrastructure, Code: code, Message: message, cause: cause}
}

// KindOf extracts the error kind, defaulting to INFRASTRUCTURE for unknown errors
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInfrastructure
}

// CodeOf extracts the error code, empty for unknown errors
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
