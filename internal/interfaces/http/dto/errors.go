package dto

import "net/http"

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// Board error codes
const (
	// ErrCodeLoadFailed is used when the board cannot be read from the store
	ErrCodeLoadFailed = "ERR_LOAD_FAILED"
	// ErrCodeWriteFailed is used when a mutation cannot be persisted
	ErrCodeWriteFailed = "ERR_WRITE_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,

	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeInvalidState: http.StatusUnprocessableEntity,

	ErrCodeLoadFailed:  http.StatusServiceUnavailable,
	ErrCodeWriteFailed: http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code, defaulting
// to 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodes maps domain error codes to API error codes.
var domainErrorCodes = map[string]string{
	"NOT_FOUND":       ErrCodeNotFound,
	"INVALID_STATE":   ErrCodeInvalidState,
	"NOT_LOADED":      ErrCodeInvalidState,
	"NOTHING_TO_UNDO": ErrCodeInvalidState,
}

// FromDomainCode translates a domain error code into the API error code,
// defaulting to ERR_INVALID_INPUT for unclassified validation codes.
func FromDomainCode(code string) string {
	if mapped, ok := domainErrorCodes[code]; ok {
		return mapped
	}
	return ErrCodeInvalidInput
}
