package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osa911/waitlist/internal/api/dto/common"
	"github.com/osa911/waitlist/internal/version"
)

// HealthResponse reports liveness and the running build
type HealthResponse struct {
	Status         string            `json:"status"`
	ActiveSessions int               `json:"active_sessions"`
	Build          version.BuildInfo `json:"build"`
}

// SessionCounter reports how many form sessions are live
type SessionCounter interface {
	Len() int
}

type HealthHandler struct {
	sessions SessionCounter
}

func NewHealthHandler(sessions SessionCounter) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, common.NewSuccessResponse(HealthResponse{
		Status:         "ok",
		ActiveSessions: h.sessions.Len(),
		Build:          version.GetBuildInfo(),
	}))
}
