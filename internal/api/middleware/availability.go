package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osa911/waitlist/internal/api/dto/common"
	"github.com/osa911/waitlist/internal/utils"
)

// RequireAvailable answers every request with 503 and message while err is
// non-nil. With a nil err it passes through.
func RequireAvailable(err error, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err != nil {
			utils.HandleAPIError(c, err, http.StatusServiceUnavailable, common.ErrCodeServiceUnavailable, message)
			return
		}
		c.Next()
	}
}
