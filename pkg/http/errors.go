package http

import (
	"fmt"
	"net/http"
)

// Error types carried in the "type" field of error bodies.
const (
	TypeInvalidInput        = "invalid_input"
	TypeInternalConsistency = "internal_consistency"
	TypeInternalError       = "internal_error"
	TypeRateLimited         = "rate_limited"
	TypeNotFound            = "not_found"
	TypeMethodNotAllowed    = "method_not_allowed"
)

// AppError represents application-level error with HTTP status.
type AppError struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
	Status int    `json:"-"`
	Err    error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

// Unwrap returns underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(errType, detail string, status int) *AppError {
	return &AppError{Type: errType, Detail: detail, Status: status}
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// BadRequestError creates a 400 invalid_input error.
func BadRequestError(detail string) *AppError {
	return NewAppError(TypeInvalidInput, detail, http.StatusBadRequest)
}

// BadRequestErrorf creates a 400 error with formatting.
func BadRequestErrorf(format string, a ...interface{}) *AppError {
	return BadRequestError(fmt.Sprintf(format, a...))
}

// TooManyRequestsError creates a 429 error.
func TooManyRequestsError(detail string) *AppError {
	return NewAppError(TypeRateLimited, detail, http.StatusTooManyRequests)
}

// InternalError creates a 500 internal_error.
func InternalError(detail string) *AppError {
	return NewAppError(TypeInternalError, detail, http.StatusInternalServerError)
}

// InternalErrorf creates a 500 error with formatting.
func InternalErrorf(format string, a ...interface{}) *AppError {
	return InternalError(fmt.Sprintf(format, a...))
}

// statusError maps a bare HTTP status (router misses, framework errors) to an AppError.
func statusError(status int, detail string) *AppError {
	switch {
	case status == http.StatusNotFound:
		return NewAppError(TypeNotFound, detail, status)
	case status == http.StatusMethodNotAllowed:
		return NewAppError(TypeMethodNotAllowed, detail, status)
	case status == http.StatusTooManyRequests:
		return TooManyRequestsError(detail)
	case status >= 400 && status < 500:
		return NewAppError(TypeInvalidInput, detail, status)
	default:
		return InternalError(detail)
	}
}
