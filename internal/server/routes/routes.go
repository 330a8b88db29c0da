package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/osa911/waitlist/internal/api/dto/common"
	apimw "github.com/osa911/waitlist/internal/api/middleware"
	"github.com/osa911/waitlist/internal/middleware"
	"github.com/osa911/waitlist/internal/utils"
)

// Setup configures all route groups
func Setup(router *gin.Engine, h *Handlers, m *Middleware) {
	router.HandleMethodNotAllowed = true

	SetupHealthRoutes(router, h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	SetupFirebaseConfigRoutes(api, h.FirebaseConfig)
	SetupInquiryRoutes(api.Group("/v1"), h.Inquiry, m)

	router.NoRoute(func(c *gin.Context) {
		utils.HandleAPIError(c, nil, http.StatusNotFound, common.ErrCodeNotFound, "Route not found")
	})
	router.NoMethod(func(c *gin.Context) {
		utils.HandleAPIError(c, nil, http.StatusMethodNotAllowed, common.ErrCodeBadRequest, "Method not allowed")
	})

	m.Logger.Info("All routes have been set up successfully")
}

// SetupGlobalMiddleware configures middleware that applies to all routes.
// Tracing wraps everything; the request id is assigned before anything logs.
func SetupGlobalMiddleware(router *gin.Engine, m *Middleware) {
	router.Use(otelgin.Middleware(m.ServiceName))
	router.Use(middleware.RequestID())
	router.Use(apimw.RequestLogger(m.Logger, "/health", "/metrics"))
	router.Use(middleware.Recovery(m.Logger))
	router.Use(apimw.LimitBody(apimw.DefaultMaxBodySize))
	router.Use(apimw.Metrics())
	router.Use(apimw.CORS(m.AllowedOrigins, m.Production))
	router.Use(apimw.SecurityHeaders(m.Production))
	router.Use(m.RateLimiter.Middleware())
}
