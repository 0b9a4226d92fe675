// Package errors defines the coded error taxonomy shared by every stage of
// the pipeline. Codes are stable so callers and tests can branch on them
// without matching message text.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies an error category.
type ErrorCode string

const (
	ErrUnknown ErrorCode = "UNKNOWN"

	// Configuration errors are fatal before any stage runs.
	ErrConfigLoad        ErrorCode = "CONFIG_LOAD"
	ErrConfigParse       ErrorCode = "CONFIG_PARSE"
	ErrConfigUnsupported ErrorCode = "CONFIG_UNSUPPORTED"
	ErrConfigInvalid     ErrorCode = "CONFIG_INVALID"

	// ErrPattern is a malformed glob, fatal at filter-set construction.
	ErrPattern ErrorCode = "PATTERN"

	// Recovered, per-entry errors.
	ErrTraversal ErrorCode = "TRAVERSAL"
	ErrFileIO    ErrorCode = "FILE_IO"

	ErrArchiveBuild        ErrorCode = "ARCHIVE_BUILD"
	ErrDestinationOccupied ErrorCode = "DESTINATION_OCCUPIED"
	ErrLocked              ErrorCode = "LOCKED"
)

// TamerError is a structured error with a code and optional details.
type TamerError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

func (e *TamerError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *TamerError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a TamerError carrying the same code.
func (e *TamerError) Is(target error) bool {
	var t *TamerError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates a TamerError with the given code and message.
func New(code ErrorCode, message string) *TamerError {
	return &TamerError{Code: code, Message: message, Details: make(map[string]interface{})}
}

// Newf creates a TamerError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *TamerError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and message to err. A nil err stays nil.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &TamerError{Code: code, Message: message, Details: make(map[string]interface{}), Wrapped: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error and returns it.
func (e *TamerError) WithDetail(key string, value interface{}) *TamerError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode reports whether any error in err's chain carries code.
func IsErrorCode(err error, code ErrorCode) bool {
	return errors.Is(err, &TamerError{Code: code})
}

// GetErrorCode returns the outermost code in err's chain, or ErrUnknown.
func GetErrorCode(err error) ErrorCode {
	var te *TamerError
	if errors.As(err, &te) {
		return te.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details of the outermost TamerError, if any.
func GetErrorDetails(err error) map[string]interface{} {
	var te *TamerError
	if errors.As(err, &te) {
		return te.Details
	}
	return nil
}
