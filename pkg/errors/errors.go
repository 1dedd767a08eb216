// Package errors provides structured error types for roadnet.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Reporting which pipeline stage failed
//
// # Error Codes
//
// The two codes raised by the graph transforms are:
//   - INVALID_INPUT: the input graph is malformed or insufficient (InputError)
//   - CONSISTENCY: intermediate state violates a weight invariant (ConsistencyError)
//
// The remaining codes cover acquisition, I/O and the HTTP API.
//
// # Usage
//
//	err := errors.Input("assign weights", "node %q has no position", id)
//	if errors.IsInput(err) {
//	    // Handle malformed graph
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", bbox)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidBounds Code = "INVALID_BOUNDS"

	// Invariant violations detected while transforming a graph
	ErrCodeConsistency Code = "CONSISTENCY"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Pipeline stage names used in Error.Stage.
const (
	StageFetch    = "fetch"
	StageWeight   = "assign weights"
	StageCollapse = "collapse degree two"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Stage   string // Pipeline stage that failed (optional)
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := string(e.Code)
	if e.Stage != "" {
		prefix += ": " + e.Stage
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
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

// InStage returns a copy of e tagged with the given stage.
func (e *Error) InStage(stage string) *Error {
	c := *e
	c.Stage = stage
	return &c
}

// Input creates an INVALID_INPUT error raised by the given stage.
func Input(stage, format string, args ...any) *Error {
	return New(ErrCodeInvalidInput, format, args...).InStage(stage)
}

// Consistency creates a CONSISTENCY error raised by the given stage.
func Consistency(stage, format string, args ...any) *Error {
	return New(ErrCodeConsistency, format, args...).InStage(stage)
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

// IsInput reports whether err is an InputError.
func IsInput(err error) bool { return Is(err, ErrCodeInvalidInput) }

// IsConsistency reports whether err is a ConsistencyError.
func IsConsistency(err error) bool { return Is(err, ErrCodeConsistency) }

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetStage extracts the failing stage from an error, if available.
func GetStage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Stage != "" {
			return e.Stage + ": " + e.Message
		}
		return e.Message
	}
	return err.Error()
}
