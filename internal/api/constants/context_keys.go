package constants

// Context keys for values set by middleware
const (
	ContextKeyRequestID = "RequestID"
	ContextKeySession   = "inquirySession"
	ContextKeyInquiry   = "inquiry"
	ContextKeyLogger    = "logger"
)

// Request and response headers
const (
	HeaderRequestID  = "X-Request-ID"
	HeaderCSRF       = "X-CSRF-Token"
	HeaderRetryAfter = "Retry-After"
)
