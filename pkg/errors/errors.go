// Package errors provides structured error types for pipegraph's CLI and
// HTTP API.
//
// Core packages return plain sentinel errors (graph.ErrInvalidEdge, ...).
// At the API boundary they are translated into an [Error] carrying a
// machine-readable [Code], which maps onto an HTTP status with [HTTPStatus]:
//
//	err := errors.Wrap(errors.ErrCodeInvalidEdge, cause, "cannot connect %s", id)
//	if errors.Is(err, errors.ErrCodeInvalidEdge) {
//	    // 422
//	}
//
// # Error Codes
//
//   - INVALID_*: input that can never succeed as sent
//   - NOT_FOUND: unknown workspace, node or edge
//   - NETWORK_ERROR, TIMEOUT, RATE_LIMITED, CIRCUIT_OPEN: upstream trouble
//   - INTERNAL_ERROR: bugs
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidEdge     Code = "INVALID_EDGE"
	ErrCodeInvalidNode     Code = "INVALID_NODE"
	ErrCodeUnknownKind     Code = "UNKNOWN_KIND"
	ErrCodeDuplicateID     Code = "DUPLICATE_ID"
	ErrCodeInvalidSnapshot Code = "INVALID_SNAPSHOT"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Upstream errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"
	ErrCodeCircuitOpen Code = "CIRCUIT_OPEN"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps a code to the HTTP status the API answers with.
// Unknown and empty codes map to 500.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidSnapshot:
		return http.StatusBadRequest
	case ErrCodeInvalidEdge, ErrCodeInvalidNode, ErrCodeUnknownKind:
		return http.StatusUnprocessableEntity
	case ErrCodeDuplicateID:
		return http.StatusConflict
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeNetwork, ErrCodeCircuitOpen:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
