package utils

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// Error codes returned in the "error" field of every failure body
const (
	CodeValidation      = "validation_failed"
	CodeInvalidNonce    = "invalid_nonce"
	CodeUnauthorized    = "unauthorized"
	CodePaymentDeclined = "payment_declined"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeTooLarge        = "payload_too_large"
	CodeInternal        = "internal_error"
	CodeGateway         = "gateway_unreachable"
)

// codeStatus is the single status-per-kind table
var codeStatus = map[string]int{
	CodeValidation:      http.StatusBadRequest,
	CodeInvalidNonce:    http.StatusBadRequest,
	CodeUnauthorized:    http.StatusUnauthorized,
	CodePaymentDeclined: http.StatusPaymentRequired,
	CodeForbidden:       http.StatusForbidden,
	CodeNotFound:        http.StatusNotFound,
	CodeConflict:        http.StatusConflict,
	CodeTooLarge:        http.StatusRequestEntityTooLarge,
	CodeInternal:        http.StatusInternalServerError,
	CodeGateway:         http.StatusBadGateway,
}

// StatusFor returns the HTTP status of an error code, 500 for unknown codes
func StatusFor(code string) int {
	if s, ok := codeStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// AbortWithError writes the failure body and stops the handler chain
func AbortWithError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(StatusFor(code), gin.H{
		"success": false,   // Always false on failure
		"error":   code,    // Machine-readable kind
		"message": message, // Human-readable text
	})
}
