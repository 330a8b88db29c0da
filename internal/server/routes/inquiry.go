package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/osa911/waitlist/internal/api/handlers"
	"github.com/osa911/waitlist/internal/api/middleware"
	"github.com/osa911/waitlist/internal/config/firebase"
)

// SetupInquiryRoutes configures the public inquiry form routes. While
// m.InquiriesUnavailable is set every route answers 503.
func SetupInquiryRoutes(router *gin.RouterGroup, inquiry *handlers.InquiryHandler, m *Middleware) {
	public := router.Group("/inquiries",
		middleware.RequireAvailable(m.InquiriesUnavailable, firebase.UnavailableMessage),
	)
	{
		public.POST("/session", inquiry.StartSession)
		public.POST("",
			middleware.RequireInquirySession(m.Sessions),
			middleware.ValidateSubmitRequest(),
			inquiry.Submit,
		)
	}
}
