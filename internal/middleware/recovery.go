package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/belovedzguard/beloved-api/pkg/errors"
	"github.com/belovedzguard/beloved-api/pkg/httputil"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

// Recovery turns a panic into a logged 500 with the uniform error body.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("Panic recovered",
					logger.String("request_id", GetRequestID(c)),
					logger.String("method", c.Request.Method),
					logger.String("path", c.Request.URL.Path),
					logger.String("ip", c.ClientIP()),
					logger.String("panic", fmt.Sprintf("%v", rec)),
					logger.String("stack", string(debug.Stack())),
				)
				httputil.ErrorResponse(c, errors.ErrInternal)
			}
		}()

		c.Next()
	}
}
