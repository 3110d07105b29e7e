package fileparse

import (
	"errors"
	"fmt"
)

// Parse and import error codes
const (
	ErrCodeInvalidFile     = "ERR_IMPORT_INVALID_FILE"
	ErrCodeEmptyFile       = "ERR_IMPORT_EMPTY_FILE"
	ErrCodeFileTooLarge    = "ERR_IMPORT_FILE_TOO_LARGE"
	ErrCodeInvalidEncoding = "ERR_IMPORT_INVALID_ENCODING"
	ErrCodeParsing         = "ERR_IMPORT_PARSING"
	ErrCodeMissingHeader   = "ERR_IMPORT_MISSING_HEADER"
	ErrCodeMissingField    = "ERR_IMPORT_MISSING_FIELD"
	ErrCodeRowSkipped      = "ERR_IMPORT_ROW_SKIPPED"
	ErrCodeUnresolved      = "ERR_IMPORT_UNRESOLVED"
)

// Common parse errors
var (
	// ErrEmptyFile is returned when the file has no content
	ErrEmptyFile = errors.New("file is empty")

	// ErrInvalidEncoding is returned when a CSV file is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("file missing header row")

	// ErrFileTooLarge is returned when the file exceeds the maximum size
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

	// ErrUnsupportedFileType is returned for file types no parser handles
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// RowError represents an error in a specific row
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a new RowError
func NewRowError(row int, column, code, message string) RowError {
	return RowError{
		Row:     row,
		Column:  column,
		Code:    code,
		Message: message,
	}
}

// ErrorCollection collects row errors up to a cap, counting overflow
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates an ErrorCollection with a maximum error limit
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		errors:    make([]RowError, 0, maxErrors),
		maxErrors: maxErrors,
	}
}

// Add adds an error to the collection
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddMissingFieldError records a required mapped column with no value
func (ec *ErrorCollection) AddMissingFieldError(row int, column string) {
	ec.Add(NewRowError(row, column, ErrCodeMissingField, fmt.Sprintf("column '%s' is required", column)))
}

// Errors returns the collected errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// Count returns the number of collected errors (up to maxErrors)
func (ec *ErrorCollection) Count() int {
	return len(ec.errors)
}

// TotalCount returns the total number of errors including overflow
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors reports whether any error was recorded
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}
