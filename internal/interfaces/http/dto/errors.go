package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is returned with per-field details
	ErrCodeValidation       = "ERR_VALIDATION"
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeDuplicateRequest is used when an Idempotency-Key was already used
	ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeValidationFormat: http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the API codes above.
// Codes raised by the bill payment domain that describe malformed input map
// to ERR_VALIDATION; rule violations against stored state map to
// ERR_BUSINESS_RULE.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"BILL_NOT_FOUND":       ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"VALIDATION_FAILED":    ErrCodeValidation,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"DUPLICATE_REQUEST":    ErrCodeDuplicateRequest,
	"INVALID_STATE":        ErrCodeInvalidState,
	"ALREADY_VOID":         ErrCodeInvalidState,

	"INVALID_AMOUNT":         ErrCodeValidation,
	"INVALID_PAYMENT_METHOD": ErrCodeValidation,
	"INVALID_PAYMENT_DATE":   ErrCodeValidation,
	"INVALID_PAYMENT_NUMBER": ErrCodeValidation,
	"INVALID_STATUS":         ErrCodeValidation,
	"INVALID_VENDOR":         ErrCodeValidation,
	"INVALID_VENDOR_NAME":    ErrCodeValidation,
	"INVALID_BILL_NUMBER":    ErrCodeValidation,
	"INVALID_DATE":           ErrCodeValidation,
	"VOID_REASON_REQUIRED":   ErrCodeValidation,
	"INVALID_VOID_REASON":    ErrCodeValidation,
	"DUPLICATE_APPLICATION":  ErrCodeValidation,

	"INVALID_ACCOUNT":        ErrCodeBusinessRule,
	"ACCOUNT_INACTIVE":       ErrCodeBusinessRule,
	"VENDOR_INACTIVE":        ErrCodeBusinessRule,
	"BILL_VOID":              ErrCodeBusinessRule,
	"BILL_NOT_OUTSTANDING":   ErrCodeBusinessRule,
	"BILL_VENDOR_MISMATCH":   ErrCodeBusinessRule,
	"EXCEEDS_BALANCE":        ErrCodeBusinessRule,
	"EXCEEDS_PAID":           ErrCodeBusinessRule,
	"CANNOT_DELETE":          ErrCodeBusinessRule,
	"NOT_A_CHECK":            ErrCodeBusinessRule,
	"APPLICATIONS_IMMUTABLE": ErrCodeBusinessRule,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format pass through; anything else is unknown.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeUnknown
}
