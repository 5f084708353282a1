package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors. Parsers and the record library
// attach one of these so callers can distinguish a missing configuration from
// an unreadable raw file without string matching.
type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConflict   ErrorType = "CONFLICT"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewNotDefinedError reports a named library record that does not exist. The
// kind is the record family (reaction, instrument, antoine).
func NewNotDefinedError(kind, name string) *AppError {
	e := NewAppError(ErrTypeConfig, fmt.Sprintf("%s %q is not defined", kind, name), nil)
	return e.WithContext("kind", kind).WithContext("name", name)
}

// NewDuplicateError reports an attempt to add a library record under a name
// that already exists.
func NewDuplicateError(kind, name string) *AppError {
	e := NewAppError(ErrTypeConflict, fmt.Sprintf("%s %q already exists", kind, name), nil)
	return e.WithContext("kind", kind).WithContext("name", name)
}

// TypeOf returns the classification of err, or an empty string when err does
// not wrap an AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err wraps an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	return TypeOf(err) == t
}

// IsNotDefined reports whether err is a missing named record. Callers treat
// these as fatal configuration errors.
func IsNotDefined(err error) bool {
	return IsType(err, ErrTypeConfig)
}

// IsDuplicate reports whether err is a record-name conflict.
func IsDuplicate(err error) bool {
	return IsType(err, ErrTypeConflict)
}
