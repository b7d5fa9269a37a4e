// Unified error handling for the G-code post-processing tools.
//
// Copyright (C) 2026  Sophist
//
// This file may be distributed under the terms of the GNU AGPLv3 license.

package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents the category of error
type ErrorCode string

const (
	// ErrConfigValidation means a settings file was readable but its
	// contents could not be parsed or did not validate.
	ErrConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// ErrHostSettings means the host machine settings could not be
	// obtained; the rewriting pass must not run without them.
	ErrHostSettings ErrorCode = "HOST_SETTINGS"
)

// ProcessError is the unified error type for the post-processor.
type ProcessError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Err wraps the underlying error
	Err error
}

// Error implements the error interface
func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ProcessError) Unwrap() error {
	return e.Err
}

// New creates a ProcessError with the given code.
func New(code ErrorCode, format string, args ...interface{}) *ProcessError {
	return &ProcessError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(code ErrorCode, err error, format string, args ...interface{}) *ProcessError {
	return &ProcessError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// CodeOf returns the ErrorCode of err, or "" when err is not a
// ProcessError (directly or via wrapping).
func CodeOf(err error) ErrorCode {
	var pe *ProcessError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
