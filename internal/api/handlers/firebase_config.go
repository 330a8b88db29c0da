package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/osa911/waitlist/internal/api/dto/common"
	"github.com/osa911/waitlist/internal/config/firebase"
	"github.com/osa911/waitlist/internal/utils"
)

// ConfigLoader resolves the public Firebase configuration
type ConfigLoader interface {
	Load(ctx context.Context) (*firebase.Config, error)
}

// FirebaseConfigHandler serves the public Firebase configuration the page
// needs before it can render the form. The body is the bare config object so
// other deployments can use this endpoint as their remote source.
type FirebaseConfigHandler struct {
	loader ConfigLoader

	mu  sync.Mutex
	cfg *firebase.Config
}

func NewFirebaseConfigHandler(loader ConfigLoader) *FirebaseConfigHandler {
	return &FirebaseConfigHandler{loader: loader}
}

// Get returns the configuration. A successful load is cached for the life of
// the process; failures are retried on the next request.
func (h *FirebaseConfigHandler) Get(c *gin.Context) {
	cfg, err := h.resolve(c.Request.Context())
	if err != nil {
		utils.HandleAPIError(c, err, http.StatusServiceUnavailable, common.ErrCodeServiceUnavailable, firebase.UnavailableMessage)
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, cfg)
}

func (h *FirebaseConfigHandler) resolve(ctx context.Context) (*firebase.Config, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cfg != nil {
		return h.cfg, nil
	}

	cfg, err := h.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	h.cfg = cfg
	return cfg, nil
}
