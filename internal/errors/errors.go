package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrMalformedDocument  = errors.New("malformed JSON document")
	ErrNeedsMoreCapacity  = errors.New("token buffer too small")
	ErrCapacityExceeded   = errors.New("capacity limit exceeded")
	ErrAllocationFailure  = errors.New("token buffer cannot grow any further")
	ErrNestedValue        = errors.New("nested object or array not allowed in strict mode")
	ErrLineTooLong        = errors.New("input line exceeds the maximum line length")
	ErrEmptyTableName     = errors.New("table name is empty")
	ErrFileNotFound       = errors.New("file not found")
	ErrInvalidFilePath    = errors.New("invalid file path")
	ErrNoInput            = errors.New("no input provided: usage is json2sql <input> <output>")
	ErrUnsupportedDriver  = errors.New("unsupported database driver")
	ErrInvalidConfigValue = errors.New("invalid configuration value")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput      ErrorType = "input"
	ErrorTypeMalformed  ErrorType = "malformed"
	ErrorTypeCapacity   ErrorType = "capacity"
	ErrorTypeAllocation ErrorType = "allocation"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeOutput     ErrorType = "output"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to reading input
func NewInputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInput, Message: message, Err: err}
}

// NewMalformedError creates a new error for a document that cannot be
// tokenized or whose token sequence is inconsistent
func NewMalformedError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeMalformed, Message: message, Err: err}
}

// NewCapacityError creates a new error for a row, key or value bound being exceeded
func NewCapacityError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeCapacity, Message: message, Err: err}
}

// NewAllocationError creates a new error for token buffer growth failure
func NewAllocationError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeAllocation, Message: message, Err: err}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeConfig, Message: message, Err: err}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeOutput, Message: message, Err: err}
}

// NewDatabaseError creates a new error related to statement execution
func NewDatabaseError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeDatabase, Message: message, Err: err}
}

// TypeOf returns the ErrorType of the outermost AppError in err's chain.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// IsLineLocal reports whether err only concerns the document being processed,
// so the run may continue with the next line.
func IsLineLocal(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeMalformed, ErrorTypeCapacity:
		return true
	}
	return false
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeMalformed:
			return fmt.Sprintf("Malformed JSON: %s", appErr.Message)
		case ErrorTypeCapacity:
			return fmt.Sprintf("Capacity exceeded: %s", appErr.Message)
		case ErrorTypeAllocation:
			return fmt.Sprintf("Allocation failure: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		case ErrorTypeDatabase:
			return fmt.Sprintf("Database error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Usage: json2sql <input> <output>"
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}
	if errors.Is(err, ErrLineTooLong) {
		return "Error: An input line is longer than the configured maximum line length."
	}

	return fmt.Sprintf("Error: %v", err)
}
