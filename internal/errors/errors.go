// Package errors provides the structured error type used across CodeScout.
// Errors carry a stable code so callers can branch on failure class without
// string matching, and wrap their cause for errors.Is/errors.As chains.
package errors

import (
	"fmt"
)

// ScoutError is the structured error type for CodeScout.
type ScoutError struct {
	// Code is the stable error code (see codes.go).
	Code string

	// Message is the human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ScoutError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ScoutError) Unwrap() error {
	return e.Cause
}

// Is matches ScoutErrors by code, enabling errors.Is against sentinel
// instances constructed with just a code.
func (e *ScoutError) Is(target error) bool {
	if t, ok := target.(*ScoutError); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new ScoutError with the given code and message.
func New(code, message string, cause error) *ScoutError {
	return &ScoutError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Newf creates a new ScoutError with a formatted message.
func Newf(code string, format string, args ...any) *ScoutError {
	return &ScoutError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a ScoutError from an existing error.
// Returns nil when err is nil so call sites can wrap unconditionally.
func Wrap(code string, err error) *ScoutError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ValidationError creates an invalid-input error.
func ValidationError(message string) *ScoutError {
	return New(ErrCodeInvalidInput, message, nil)
}

// IOError creates a file-read error.
func IOError(message string, cause error) *ScoutError {
	return New(ErrCodeFileRead, message, cause)
}

// StoreError creates a persistence error.
func StoreError(message string, cause error) *ScoutError {
	return New(ErrCodePersist, message, cause)
}

// HasCode reports whether err (or anything in its chain) is a ScoutError
// with the given code.
func HasCode(err error, code string) bool {
	for err != nil {
		if se, ok := err.(*ScoutError); ok && se.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
