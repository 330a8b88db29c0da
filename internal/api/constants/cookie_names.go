package constants

// Cookie names used in the application
const (
	// CookieInquirySession carries the form session id (HttpOnly)
	CookieInquirySession = "inquiry_session"

	// Cookie paths
	CookiePathAPI = "/api" // API path for cookies restricted to API requests
)
