package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeRead      ErrorType = "read"
	ErrorTypeFormat    ErrorType = "format"
	ErrorTypeDecode    ErrorType = "decode"
	ErrorTypeDelimiter ErrorType = "delimiter"
	ErrorTypeCache     ErrorType = "cache"
	ErrorTypeInput     ErrorType = "input"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Error represents a hashing error attributed to a single image path
type Error struct {
	Type    ErrorType
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s error: %s", e.Type, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s error for %s: %s: %v", e.Type, e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error for %s: %s", e.Type, e.Path, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error without an underlying cause
func New(errorType ErrorType, path, message string) *Error {
	return &Error{Type: errorType, Path: path, Message: message}
}

// Wrap creates a new Error wrapping an underlying cause
func Wrap(errorType ErrorType, path, message string, err error) *Error {
	return &Error{Type: errorType, Path: path, Message: message, Err: err}
}

// TypeOf extracts the ErrorType from an error chain
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsPerItem checks if an error is contained to a single image and should be
// logged and skipped rather than aborting the run
func IsPerItem(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeRead, ErrorTypeFormat, ErrorTypeDecode, ErrorTypeDelimiter:
		return true
	case ErrorTypeCache, ErrorTypeInput:
		return false
	default:
		return false
	}
}

// IsDelimiter reports whether an error is a delimiter refusal from the cache
func IsDelimiter(err error) bool {
	return TypeOf(err) == ErrorTypeDelimiter
}
