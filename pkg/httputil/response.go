// Package httputil provides HTTP utility functions.
package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/belovedzguard/beloved-api/pkg/errors"
)

// ErrorBody is the uniform error payload.
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is returned by operations that have nothing else to report.
type MessageBody struct {
	Message string `json:"message"`
}

// ErrorResponse writes err as {"error": message} with the status the error
// carries. Errors that are not *errors.Error become a generic 500.
func ErrorResponse(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.ErrInternal.WithError(err)
	}
	if appErr.Err != nil {
		_ = c.Error(appErr)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, ErrorBody{Error: appErr.Message})
}

// OK writes data with 200.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes data with 201.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Message writes {"message": msg} with 200.
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, MessageBody{Message: msg})
}

// GetRequestID retrieves or generates a request ID.
func GetRequestID(c *gin.Context) string {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return requestID
}

// SecurityHeadersMiddleware sets security headers.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

		c.Next()
	}
}

// BindJSON binds the request body into obj. Malformed JSON and failed
// binding tags are reported as validation errors; application errors raised
// by custom unmarshalers pass through unchanged.
func BindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		if appErr, ok := errors.As(err); ok {
			return appErr
		}
		return errors.ErrValidationFailed.WithMessage("Invalid request body").WithError(err)
	}
	return nil
}
