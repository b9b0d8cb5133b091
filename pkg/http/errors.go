package http

import (
	"errors"
	"fmt"
	"net/http"

	"privco_valuation/pkg/core/model"
)

// AppError represents an application-level error with HTTP status.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Field:   field,
		Status:  status,
	}
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// NotFoundError creates a 404 error.
func NotFoundError(message string) *AppError {
	return NewAppError("ERR_NOT_FOUND", "", message, http.StatusNotFound)
}

// BadRequestError creates a 400 error.
func BadRequestError(message string) *AppError {
	return NewAppError("ERR_BAD_REQUEST", "", message, http.StatusBadRequest)
}

// BadRequestErrorf creates a 400 error with formatting.
func BadRequestErrorf(format string, a ...interface{}) *AppError {
	return BadRequestError(fmt.Sprintf(format, a...))
}

// UnprocessableError creates a 422 error for requests that parse but
// cannot be valued.
func UnprocessableError(message string) *AppError {
	return NewAppError("ERR_UNPROCESSABLE", "", message, http.StatusUnprocessableEntity)
}

// InternalError creates a 500 error.
func InternalError(message string) *AppError {
	return NewAppError("ERR_INTERNAL", "", message, http.StatusInternalServerError)
}

// FromDomainError maps engine error types onto AppErrors. Validation
// failures and degenerate parameter combinations are client errors, not
// server faults.
func FromDomainError(err error) *AppError {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		appErr := NewAppError("ERR_VALIDATION", verr.Field, verr.Message, http.StatusBadRequest)
		return appErr.WithError(err)
	}

	var derr *model.DomainError
	if errors.As(err, &derr) {
		appErr := NewAppError("ERR_DOMAIN", derr.Param, derr.Message, http.StatusUnprocessableEntity)
		return appErr.WithError(err)
	}

	return InternalError("valuation failed").WithError(err)
}
