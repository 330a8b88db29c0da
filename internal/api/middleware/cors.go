package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/osa911/waitlist/internal/api/constants"
)

// CORS lets the marketing pages call the API with credentials so the session
// cookie travels. Outside production every origin is echoed back; in
// production only allowedOrigins are, and an empty list means same-origin
// only.
func CORS(allowedOrigins []string, production bool) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", constants.HeaderCSRF, constants.HeaderRequestID},
		ExposeHeaders:    []string{constants.HeaderRequestID, constants.HeaderRetryAfter, "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	switch {
	case len(allowedOrigins) > 0:
		config.AllowOrigins = allowedOrigins
	case production:
		config.AllowOriginFunc = func(string) bool { return false }
	default:
		config.AllowOriginFunc = func(string) bool { return true }
	}

	return cors.New(config)
}
