// Package errors provides the structured error type shared by every layer of
// the catalog API. Handlers turn these into `{"error": message}` bodies.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error represents a structured application error.
type Error struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	HTTPStatus int         `json:"-"`
	Details    interface{} `json:"details,omitempty"`
	Err        error       `json:"-"` // Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy of the error carrying details.
func (e *Error) WithDetails(details interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// WithError returns a copy of the error wrapping err.
func (e *Error) WithError(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// WithMessage returns a copy of the error with a caller-facing message.
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// New creates a new Error.
func New(code, message string, httpStatus int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an existing error with error code and message.
func Wrap(err error, code, message string, httpStatus int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Error codes
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"

	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeInvalidFormat    = "INVALID_FORMAT"

	ErrCodeUnsupportedAssetType = "UNSUPPORTED_ASSET_TYPE"
	ErrCodeInvalidFileName      = "INVALID_FILE_NAME"
	ErrCodeStorageConfiguration = "STORAGE_CONFIGURATION"
	ErrCodeMailDelivery         = "MAIL_DELIVERY_FAILED"

	ErrCodeDatabaseError = "DATABASE_ERROR"
)

// Predefined errors
var (
	ErrInternal        = New(ErrCodeInternal, "Internal server error", http.StatusInternalServerError)
	ErrNotFound        = New(ErrCodeNotFound, "Resource not found", http.StatusNotFound)
	ErrConflict        = New(ErrCodeConflict, "Resource conflict", http.StatusConflict)
	ErrForbidden       = New(ErrCodeForbidden, "Access forbidden", http.StatusForbidden)
	ErrUnauthorized    = New(ErrCodeUnauthorized, "Unauthorized", http.StatusUnauthorized)
	ErrTooManyRequests = New(ErrCodeTooManyRequests, "Too many requests", http.StatusTooManyRequests)
)

var (
	// Validation errors
	ErrValidationFailed = New(ErrCodeValidationFailed, "Validation failed", http.StatusBadRequest)
	ErrMissingField     = New(ErrCodeMissingField, "Required field missing", http.StatusBadRequest)
	ErrInvalidFormat    = New(ErrCodeInvalidFormat, "Invalid format", http.StatusBadRequest)
)

var (
	// Asset and storage errors
	ErrUnsupportedAssetType = New(ErrCodeUnsupportedAssetType, "Unsupported asset type", http.StatusBadRequest)
	ErrInvalidFileName      = New(ErrCodeInvalidFileName, "Invalid file name", http.StatusBadRequest)
	ErrStorageConfiguration = New(ErrCodeStorageConfiguration, "Object storage is not configured", http.StatusInternalServerError)
	ErrMailDelivery         = New(ErrCodeMailDelivery, "Failed to send message. Please try again later.", http.StatusInternalServerError)
)

var (
	ErrDatabaseError = New(ErrCodeDatabaseError, "Database error", http.StatusInternalServerError)
)

// IsError checks if an error is, or wraps, a specific application error.
func IsError(err error, target *Error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, target)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns the HTTP status code for an error.
// If the error is not an *Error, returns 500.
func GetHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	appErr, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	return appErr.HTTPStatus
}

// GetCode returns the error code for an error.
// If the error is not an *Error, returns INTERNAL_ERROR.
func GetCode(err error) string {
	if err == nil {
		return ""
	}
	appErr, ok := As(err)
	if !ok {
		return ErrCodeInternal
	}
	return appErr.Code
}
