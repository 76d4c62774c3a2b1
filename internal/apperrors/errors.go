// Package apperrors provides the structured error taxonomy of changelog aggregation.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification via errors.Is().
var (
	ErrConfiguration = errors.New("configuration error")
	ErrDiscovery     = errors.New("discovery error")
	ErrState         = errors.New("state error")
	ErrIO            = errors.New("i/o error")
)

// Error provides structured error with context.
type Error struct {
	Sentinel error  // Wrapped sentinel for errors.Is() classification
	Message  string // Human-readable message
	Field    string // For configuration errors (e.g., "template", "output")
	Op       string // Operation that failed (e.g., "output.write")
	Cause    error  // Underlying error
}

// Error returns the human-readable error message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Cause}
}

// Configuration creates a configuration error for a missing or invalid input.
func Configuration(field, message string) error {
	return &Error{
		Sentinel: ErrConfiguration,
		Message:  message,
		Field:    field,
	}
}

// Discovery creates a discovery error for a malformed resource locator.
func Discovery(op string, cause error) error {
	return &Error{
		Sentinel: ErrDiscovery,
		Message:  fmt.Sprintf("%s: %v", op, cause),
		Op:       op,
		Cause:    cause,
	}
}

// State creates a state error describing the unmet condition.
func State(message string) error {
	return &Error{
		Sentinel: ErrState,
		Message:  message,
	}
}

// IO creates an I/O error wrapping an underlying cause.
func IO(op string, cause error) error {
	return &Error{
		Sentinel: ErrIO,
		Message:  fmt.Sprintf("%s: %v", op, cause),
		Op:       op,
		Cause:    cause,
	}
}
