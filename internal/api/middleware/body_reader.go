package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osa911/waitlist/internal/api/dto/common"
	"github.com/osa911/waitlist/internal/utils"
)

// DefaultMaxBodySize fits the largest legal inquiry with room to spare
const DefaultMaxBodySize = 64 << 10

// LimitBody caps request bodies at maxBytes. Reads past the limit fail,
// which surfaces as a bind error in the handler.
func LimitBody(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			utils.HandleAPIError(c, nil, http.StatusRequestEntityTooLarge, common.ErrCodeBadRequest, "Request body too large")
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
