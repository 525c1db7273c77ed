// Package domainerrors defines the single tagged error type used across the
// gateway. Every domain failure carries a stable machine-readable code so the
// transport layer can map it to a response without inspecting messages.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable error code.
type Code string

const (
	CodeValidation         Code = "VALIDATION"
	CodeNotFound           Code = "NOT_FOUND"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeConflict           Code = "CONFLICT"
	CodeTokenInvalid       Code = "TOKEN_INVALID"
	CodeSignatureMismatch  Code = "SIGNATURE_MISMATCH"
	CodeConfigInvalid      Code = "CONFIG_INVALID"
	CodeLimitReached       Code = "LIMIT_REACHED"
	CodeInvariantViolation Code = "INVARIANT"
	CodeInternal           Code = "INTERNAL"
)

// Error is the domain error type. Details is optional structured payload,
// e.g. field-level validation errors.
type Error struct {
	Code    Code
	Message string
	Details map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates an underlying error with a domain code. The cause stays
// reachable through errors.Unwrap for logging; callers only see the code.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WithDetails attaches structured detail payload to the error.
func (e *Error) WithDetails(details map[string]string) *Error {
	e.Details = details
	return e
}

// HasCode reports whether err is (or wraps) a domain error with the code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode; reads better in test assertions.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the domain code from err, defaulting to CodeInternal for
// errors that carry no code. Unexpected failures must never surface a domain
// code they were not assigned.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
