package utils

import (
	"github.com/gin-gonic/gin"
)

// GetRealIP returns the client IP. Forwarding headers are honored only when
// the immediate peer is in the engine's trusted proxy list (see
// gin.Engine.SetTrustedProxies); otherwise the socket address is used.
func GetRealIP(c *gin.Context) string {
	return c.ClientIP()
}
