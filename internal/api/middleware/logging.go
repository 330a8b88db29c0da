package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osa911/waitlist/internal/api/constants"
	"github.com/osa911/waitlist/internal/logging"
	"github.com/osa911/waitlist/internal/utils"
)

// RequestLogger logs one line per request and attaches logger to the context
// for utils.HandleAPIError. Paths in skip are not logged.
func RequestLogger(logger *logging.Logger, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Set(constants.ContextKeyLogger, logger)

		c.Next()

		if _, ok := skipped[path]; ok {
			return
		}

		logger.LogHTTPRequest(
			c.Request.Method,
			path,
			utils.GetRealIP(c),
			c.Writer.Status(),
			c.Writer.Size(),
			time.Since(start).String(),
		)
	}
}
