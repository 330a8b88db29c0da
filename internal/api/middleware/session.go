package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osa911/waitlist/internal/api/constants"
	"github.com/osa911/waitlist/internal/api/dto/common"
	"github.com/osa911/waitlist/internal/service"
	"github.com/osa911/waitlist/internal/utils"
)

// SessionExpiredMessage is shown when the form session is gone
const SessionExpiredMessage = "Your session has expired. Please refresh the page and try again."

// SessionLookup finds form sessions by id
type SessionLookup interface {
	Get(id string) (*service.Session, error)
}

// RequireInquirySession loads the form session named by the session cookie
// into the context under constants.ContextKeySession. The CSRF token is not
// checked here; the abuse guard compares it so mismatches are recorded.
func RequireInquirySession(sessions SessionLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(constants.CookieInquirySession)
		if err != nil || id == "" {
			utils.HandleAPIError(c, err, http.StatusBadRequest, common.ErrCodeSessionExpired, SessionExpiredMessage)
			return
		}

		sess, err := sessions.Get(id)
		if err != nil {
			if errors.Is(err, service.ErrSessionNotFound) {
				utils.HandleAPIError(c, err, http.StatusBadRequest, common.ErrCodeSessionExpired, SessionExpiredMessage)
				return
			}
			utils.HandleAPIError(c, err, http.StatusInternalServerError, common.ErrCodeInternalServer, "Failed to load session")
			return
		}

		c.Set(constants.ContextKeySession, sess)
		c.Next()
	}
}
