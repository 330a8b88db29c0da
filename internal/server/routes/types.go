package routes

import (
	"github.com/osa911/waitlist/internal/api/handlers"
	"github.com/osa911/waitlist/internal/api/middleware"
	"github.com/osa911/waitlist/internal/logging"
)

// Handlers contains all the route handlers
type Handlers struct {
	Health         *handlers.HealthHandler
	Inquiry        *handlers.InquiryHandler
	FirebaseConfig *handlers.FirebaseConfigHandler
}

// Middleware contains the middleware shared across route groups
type Middleware struct {
	Logger         *logging.Logger
	RateLimiter    *middleware.IPRateLimiter
	Sessions       middleware.SessionLookup
	AllowedOrigins []string
	Production     bool
	ServiceName    string

	// InquiriesUnavailable disables the inquiry routes when non-nil
	InquiriesUnavailable error
}
