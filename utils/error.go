package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service error codes surfaced to callers.
const (
	CodeValidation = "validation"
	CodeNotFound   = "not_found"
	CodeSlotFull   = "slot_full"
	CodeConflict   = "conflict"
	CodeTransient  = "transient"
)

// ServiceError carries a machine-readable code alongside the message so
// handlers can map failures to specific responses.
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(format string, args ...any) error {
	return &ServiceError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) error {
	return &ServiceError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewSlotFullError(format string, args ...any) error {
	return &ServiceError{Code: CodeSlotFull, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) error {
	return &ServiceError{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

func NewTransientError(format string, args ...any) error {
	return &ServiceError{Code: CodeTransient, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the service error code, or empty for plain errors.
func CodeOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	GetLogger().Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// JSONServiceError maps a service error to the appropriate HTTP status.
func JSONServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch CodeOf(err) {
	case CodeValidation:
		status = http.StatusBadRequest
	case CodeNotFound:
		status = http.StatusNotFound
	case CodeSlotFull, CodeConflict:
		status = http.StatusConflict
	case CodeTransient:
		status = http.StatusServiceUnavailable
	}
	var se *ServiceError
	if errors.As(err, &se) {
		GetLogger().Warn("request failed", zap.String("code", se.Code), zap.String("message", se.Message))
		c.JSON(status, ErrorResponse{Message: se.Message, Code: se.Code})
		return
	}
	GetLogger().Error("request failed", zap.Error(err))
	c.JSON(status, ErrorResponse{Message: "internal error"})
}
