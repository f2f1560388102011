package dto

import (
	"net/http"
	"strings"
)

// Transport error codes. Domain failures keep their own codes
// (INSUFFICIENT_FUNDS, LOAN_NOT_FOUND) and are mapped by DomainErrorStatus.
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
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeInvalidID is used when a path or query id is not a UUID
	ErrCodeInvalidID = "ERR_INVALID_ID"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Request replay error codes
const (
	// ErrCodeIdempotencyConflict is used when an Idempotency-Key is reused
	ErrCodeIdempotencyConflict = "ERR_IDEMPOTENCY_CONFLICT"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps transport error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	ErrCodeInvalidID:   http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeIdempotencyConflict: http.StatusConflict,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for a transport error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodeStatus lists domain codes whose status the naming rules in
// DomainErrorStatus would get wrong
var domainCodeStatus = map[string]int{
	"DUPLICATE_PAYMENT":    http.StatusConflict,
	"UNAUTHORIZED":         http.StatusUnauthorized,
	"INSUFFICIENT_FUNDS":   http.StatusUnprocessableEntity,
	"CURRENCY_MISMATCH":    http.StatusUnprocessableEntity,
	"LOAN_NOT_ACTIVE":      http.StatusUnprocessableEntity,
	"LOAN_HAS_PAYMENTS":    http.StatusUnprocessableEntity,
	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"NO_ACTIVE_CURRENCIES": http.StatusUnprocessableEntity,
	"MISSING_CONCEPT":      http.StatusBadRequest,
	"MISSING_REFERENCE":    http.StatusBadRequest,
}

// DomainErrorStatus maps a domain error code to an HTTP status.
// *_NOT_FOUND is 404, INVALID_* is 400 and any other business rule is 422.
func DomainErrorStatus(code string) int {
	if status, ok := domainCodeStatus[code]; ok {
		return status
	}
	switch {
	case code == "NOT_FOUND" || strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}
