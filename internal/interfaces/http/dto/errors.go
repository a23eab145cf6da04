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
	ErrCodeValidation = "ERR_VALIDATION"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidTransition  = "ERR_INVALID_TRANSITION"
	ErrCodeOutOfStock         = "ERR_OUT_OF_STOCK"
	ErrCodeCartInvalid        = "ERR_CART_INVALID"
	ErrCodeInvalidCoupon      = "ERR_INVALID_COUPON"
	ErrCodeInvalidSignature   = "ERR_INVALID_SIGNATURE"
	ErrCodeGatewayUnavailable = "ERR_GATEWAY_UNAVAILABLE"
	ErrCodeBusinessRule       = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule violations -> 422 Unprocessable Entity
	ErrCodeInvalidTransition: http.StatusUnprocessableEntity,
	ErrCodeOutOfStock:        http.StatusUnprocessableEntity,
	ErrCodeCartInvalid:       http.StatusUnprocessableEntity,
	ErrCodeInvalidCoupon:     http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,

	// Payment callback authentication failure is a client fault
	ErrCodeInvalidSignature: http.StatusBadRequest,
	// Provider outage surfaces as a retryable upstream failure
	ErrCodeGatewayUnavailable: http.StatusBadGateway,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 422: domain errors not listed here are business
// rule rejections, never server faults.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}

// DomainErrorCodeMapping maps domain error codes to their transport codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"INVALID_TRANSITION":   ErrCodeInvalidTransition,
	"OUT_OF_STOCK":         ErrCodeOutOfStock,
	"INSUFFICIENT_STOCK":   ErrCodeOutOfStock,
	"CART_INVALID":         ErrCodeCartInvalid,
	"INVALID_COUPON":       ErrCodeInvalidCoupon,
	"COUPON_NOT_FOUND":     ErrCodeInvalidCoupon,
	"COUPON_MINIMUM":       ErrCodeInvalidCoupon,
	"INVALID_SIGNATURE":    ErrCodeInvalidSignature,
	"GATEWAY_UNAVAILABLE":  ErrCodeGatewayUnavailable,
	"EMAIL_TAKEN":          ErrCodeAlreadyExists,
	"SKU_TAKEN":            ErrCodeAlreadyExists,
	"INVALID_CREDENTIALS":  ErrCodeUnauthorized,
	"ACCOUNT_DISABLED":     ErrCodeForbidden,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the transport format.
// Codes without an explicit mapping pass through unchanged.
func NormalizeErrorCode(code string) string {
	if transportCode, ok := DomainErrorCodeMapping[code]; ok {
		return transportCode
	}
	return code
}
