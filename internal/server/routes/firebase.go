package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/osa911/waitlist/internal/api/handlers"
)

// SetupFirebaseConfigRoutes exposes the public Firebase configuration
func SetupFirebaseConfigRoutes(router *gin.RouterGroup, h *handlers.FirebaseConfigHandler) {
	router.GET("/firebase-config", h.Get)
}
