package dto

import (
	"net/http"

	"github.com/mkeren/finsight-backend/internal/domain/domainerror"
)

// APIError represents a structured error response.
// All error responses from the API use this format for consistency.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes
const (
	ErrCodeNotFound      = "not_found"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeConflict      = "conflict"
	ErrCodeInternalError = "internal_error"
	ErrCodeValidation    = "validation_error"
)

// NewAPIError creates a new APIError with the given code and message.
func NewAPIError(code, message string) APIError {
	return APIError{
		Code:    code,
		Message: message,
	}
}

// BadRequestError creates a bad request error response.
func BadRequestError(message string) APIError {
	return NewAPIError(ErrCodeBadRequest, message)
}

// FromError maps a domain error to its HTTP status and response body.
// Unknown errors are reported as opaque internal errors so store details
// never leak to clients.
func FromError(err error) (int, APIError) {
	switch domainerror.KindOf(err) {
	case domainerror.KindValidation:
		return http.StatusBadRequest, NewAPIError(ErrCodeValidation, err.Error())
	case domainerror.KindNotFound:
		return http.StatusNotFound, NewAPIError(ErrCodeNotFound, err.Error())
	case domainerror.KindConflict:
		return http.StatusConflict, NewAPIError(ErrCodeConflict, err.Error())
	default:
		return http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, "an internal error occurred")
	}
}
