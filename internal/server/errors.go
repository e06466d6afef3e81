// errors.go - Structured error handling for API responses
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/paperlens/paperlens/internal/common"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// fromRepoError maps repository sentinels to API errors.
func fromRepoError(err error, resource, id string) *APIError {
	if errors.Is(err, common.ErrNotFound) {
		return NewNotFoundError(resource, id)
	}
	return NewInternalError("storage operation failed", err)
}

// ErrorHandler renders APIError values as JSON; anything else falls through
// to echo's default handling.
func ErrorHandler(err error, c echo.Context) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if !c.Response().Committed {
			_ = c.JSON(apiErr.Status, apiErr)
		}
		return
	}
	c.Echo().DefaultHTTPErrorHandler(err, c)
}
