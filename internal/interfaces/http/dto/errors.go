package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
)

// Import error codes
const (
	// ErrCodeImportInvalidFile is used when an uploaded file cannot be parsed
	ErrCodeImportInvalidFile = "ERR_IMPORT_INVALID_FILE"
	// ErrCodeImportTooLarge is used when an uploaded file exceeds row limits
	ErrCodeImportTooLarge = "ERR_IMPORT_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	// Import errors
	ErrCodeImportInvalidFile: http.StatusBadRequest,
	ErrCodeImportTooLarge:    http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the standardized
// wire format codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,

	// Value validation failures raised by domain constructors
	"INVALID_CODE":          ErrCodeValidation,
	"INVALID_NAME":          ErrCodeValidation,
	"INVALID_PRICE":         ErrCodeValidation,
	"INVALID_EMAIL":         ErrCodeValidationFormat,
	"INVALID_CONFIG_NAME":   ErrCodeValidation,
	"INVALID_RULE_NAME":     ErrCodeValidation,
	"INVALID_REFERENCE":     ErrCodeValidation,
	"INVALID_REGEX":         ErrCodeValidationFormat,
	"INVALID_PATTERN":       ErrCodeValidationFormat,
	"INVALID_DESTINATION":   ErrCodeValidation,
	"INVALID_SOURCE_COLUMN": ErrCodeValidation,
	"INVALID_PARENT":        ErrCodeValidation,
	"MISSING_LABEL":         ErrCodeValidationRequired,
	"MISSING_FIELD_NAME":    ErrCodeValidationRequired,
	"MISSING_SERIAL":        ErrCodeValidationRequired,
	"MISSING_SUPPLIER":      ErrCodeValidationRequired,
	"MISSING_PRODUCT":       ErrCodeValidationRequired,

	// Mapping configuration conflicts
	"DUPLICATE_LABEL":       ErrCodeConflict,
	"DUPLICATE_RULE_FIELDS": ErrCodeConflict,
	"DANGLING_RULE_FIELD":   ErrCodeInvalidInput,

	// Business rule violations
	"ALREADY_INACTIVE":        ErrCodeInvalidState,
	"TRANSFER_DONE":           ErrCodeInvalidState,
	"EMPTY_TRANSFER":          ErrCodeBusinessRule,
	"EMPTY_UNMATCHED_ENTRY":   ErrCodeBusinessRule,
	"SAME_ANALYSIS_COLUMN":    ErrCodeInvalidInput,
	"UNKNOWN_ANALYSIS_COLUMN": ErrCodeInvalidInput,

	// Import failures
	"INVALID_FILE_TYPE": ErrCodeImportInvalidFile,
	"TOO_MANY_ROWS":     ErrCodeImportTooLarge,
	"RAW_DATA_ENCODE":   ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the standardized
// wire format. Codes already in the wire format, or unknown codes,
// pass through unchanged.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := DomainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
