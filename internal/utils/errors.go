package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/osa911/waitlist/internal/api/constants"
	"github.com/osa911/waitlist/internal/api/dto/common"
	"github.com/osa911/waitlist/internal/logging"
)

// HandleAPIError is a utility function for consistent error handling across the API.
// Error details are only exposed outside release mode.
func HandleAPIError(c *gin.Context, err error, status int, code common.ErrorCode, message string) {
	HandleAPIErrorWithDetails(c, err, status, code, message, nil)
}

// HandleAPIErrorWithDetails is HandleAPIError with a client-facing details
// payload, which is sent in every mode.
func HandleAPIErrorWithDetails(c *gin.Context, err error, status int, code common.ErrorCode, message string, details interface{}) {
	RequestLogger(c).LogHTTPError(
		c.Request.Method,
		c.Request.URL.Path,
		GetRealIP(c),
		status,
		message,
		err,
	)

	if details == nil && err != nil && gin.Mode() != gin.ReleaseMode {
		details = err.Error()
	}

	c.AbortWithStatusJSON(status, common.NewErrorResponse(code, message, details))
}

// RequestLogger returns the logger the middleware chain attached to c, or the
// process logger when none was attached.
func RequestLogger(c *gin.Context) *logging.Logger {
	if v, ok := c.Get(constants.ContextKeyLogger); ok {
		if logger, ok := v.(*logging.Logger); ok && logger != nil {
			return logger
		}
	}
	return logging.GetLogger()
}
