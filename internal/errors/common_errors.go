package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeSchema     ErrorType = "SCHEMA"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeInternal   ErrorType = "INTERNAL"
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

// IsType reports whether err wraps an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// NewSchemaError reports input that does not have the expected shape:
// a missing sheet, a missing column or a cell that cannot be read.
func NewSchemaError(message string, cause error) *AppError {
	return NewAppError(ErrTypeSchema, message, cause)
}

// MissingSheetError creates a schema error for an absent worksheet
func MissingSheetError(sheet string) *AppError {
	return NewSchemaError(fmt.Sprintf("required sheet %q not found", sheet), nil).
		WithContext("sheet", sheet)
}

// MissingColumnError creates a schema error for an absent header column
func MissingColumnError(sheet, column string) *AppError {
	return NewSchemaError(fmt.Sprintf("required column %q not found in sheet %q", column, sheet), nil).
		WithContext("sheet", sheet).
		WithContext("column", column)
}

// InvalidCellError creates a schema error for a cell whose value cannot be parsed
func InvalidCellError(sheet, column string, row int, value string, cause error) *AppError {
	return NewSchemaError(fmt.Sprintf("invalid value %q in column %q at row %d", value, column, row), cause).
		WithContext("sheet", sheet).
		WithContext("column", column).
		WithContext("row", row)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewInternalAppError creates an error for broken internal invariants
func NewInternalAppError(message string, cause error) *AppError {
	return NewAppError(ErrTypeInternal, message, cause)
}
