// Package errors provides structured error handling for sparsefeed
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal represents internal-consistency failures; these
	// indicate a bug in the library, not bad input
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeFormat represents a malformed record in text input
	ErrorTypeFormat ErrorType = "format"
	// ErrorTypeIndexOverflow represents a feature id that does not fit
	// the configured index width
	ErrorTypeIndexOverflow ErrorType = "index_overflow"
	// ErrorTypeCorruptData represents a truncated or malformed binary stream
	ErrorTypeCorruptData ErrorType = "corrupt_data"
	// ErrorTypeIO represents a chunk source read failure
	ErrorTypeIO ErrorType = "io"
	// ErrorTypeOutOfRange represents an out-of-bounds row or feature access
	ErrorTypeOutOfRange ErrorType = "out_of_range"
	// ErrorTypeUnsupportedFormat represents an unknown iterator or source type tag
	ErrorTypeUnsupportedFormat ErrorType = "unsupported_format"
	// ErrorTypeNotReady represents Value being observed before a successful Next
	ErrorTypeNotReady ErrorType = "not_ready"
	// ErrorTypeValidation represents an invalid combination of inputs,
	// e.g. mixing explicit and implicit feature values in one container
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// IsFatal reports whether the error is a permanent fault that must abort
// the current read pass. Every parse-time condition is fatal: malformed
// input cannot be skipped without breaking row alignment downstream.
func IsFatal(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return err != nil
	}

	switch e.Type {
	case ErrorTypeFormat, ErrorTypeIndexOverflow, ErrorTypeCorruptData, ErrorTypeIO:
		return true
	default:
		return false
	}
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
