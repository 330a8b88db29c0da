package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osa911/waitlist/internal/api/constants"
	"github.com/osa911/waitlist/internal/api/dto/common"
	"github.com/osa911/waitlist/internal/api/dto/v1/inquiry"
	"github.com/osa911/waitlist/internal/repository"
	"github.com/osa911/waitlist/internal/service"
	"github.com/osa911/waitlist/internal/utils"
)

// InProgressMessage answers a submit that overlaps a running one
const InProgressMessage = "A submission is already in progress."

// SessionStarter issues form sessions
type SessionStarter interface {
	Start() (*service.Session, error)
}

// CookieConfig controls the session cookie
type CookieConfig struct {
	TTL        time.Duration
	Production bool
	Domain     string
}

type InquiryHandler struct {
	sessions SessionStarter
	cookie   CookieConfig
}

func NewInquiryHandler(sessions SessionStarter, cookie CookieConfig) *InquiryHandler {
	return &InquiryHandler{sessions: sessions, cookie: cookie}
}

// StartSession is called when the form renders. It starts the fill timer and
// hands out the CSRF token and the honeypot field name.
func (h *InquiryHandler) StartSession(c *gin.Context) {
	sess, err := h.sessions.Start()
	if errors.Is(err, service.ErrTooManySessions) {
		c.Header(constants.HeaderRetryAfter, "60")
		utils.HandleAPIError(c, err, http.StatusServiceUnavailable, common.ErrCodeServiceUnavailable,
			service.UserMessage(repository.ClassUnavailable, ""))
		return
	}
	if err != nil {
		utils.HandleAPIError(c, err, http.StatusInternalServerError, common.ErrCodeInternalServer, "Failed to start session")
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		constants.CookieInquirySession,
		sess.ID,
		int(h.cookie.TTL.Seconds()),
		constants.CookiePathAPI,
		h.cookie.Domain,
		h.cookie.Production,
		true,
	)

	utils.HandleCreated(c, inquiry.SessionResponse{
		SessionID:     sess.ID,
		CSRFToken:     sess.CSRFToken,
		HoneypotField: sess.HoneypotField,
		StartedAt:     sess.StartedAt,
	})
}

// Submit runs the bound inquiry through the session's pipeline and maps the
// outcome onto the response envelope.
func (h *InquiryHandler) Submit(c *gin.Context) {
	sessVal, exists := c.Get(constants.ContextKeySession)
	if !exists {
		utils.HandleAPIError(c, nil, http.StatusInternalServerError, common.ErrCodeInternalServer, "Session not found in context")
		return
	}
	sess, ok := sessVal.(*service.Session)
	if !ok {
		utils.HandleAPIError(c, nil, http.StatusInternalServerError, common.ErrCodeInternalServer, "Invalid session format")
		return
	}

	reqVal, exists := c.Get(constants.ContextKeyInquiry)
	if !exists {
		utils.HandleAPIError(c, nil, http.StatusInternalServerError, common.ErrCodeInternalServer, "Inquiry data not found in context")
		return
	}
	req, ok := reqVal.(*inquiry.SubmitRequest)
	if !ok {
		utils.HandleAPIError(c, nil, http.StatusInternalServerError, common.ErrCodeInternalServer, "Invalid inquiry data format")
		return
	}

	out := sess.Pipeline.Submit(c.Request.Context(), service.RawInput{
		Fields:       req.Fields(),
		Honeypot:     req.Website,
		CaptchaToken: req.RecaptchaToken,
		CSRFToken:    c.GetHeader(constants.HeaderCSRF),
		UserAgent:    c.Request.UserAgent(),
		RemoteIP:     utils.GetRealIP(c),
		Language:     req.Language,
		Timezone:     req.Timezone,
		Screen:       req.Screen,
	})

	writeOutcome(c, out)
}

func writeOutcome(c *gin.Context, out service.Outcome) {
	if out.Success {
		utils.HandleSuccess(c, inquiry.SubmitResponse{
			ID:           out.ID,
			Message:      out.Message,
			ResetForm:    out.ResetForm,
			ResetCaptcha: out.ResetCaptcha,
			ClearAfterMS: out.ClearAfter.Milliseconds(),
		})
		return
	}

	if out.Ignored {
		utils.HandleAPIError(c, nil, http.StatusConflict, common.ErrCodeConflict, InProgressMessage)
		return
	}

	details := inquiry.RejectionDetails{ResetCaptcha: out.ResetCaptcha}

	switch out.Stage {
	case service.StageValidate:
		details.Reasons = out.Reasons
		utils.HandleAPIErrorWithDetails(c, nil, http.StatusBadRequest, common.ErrCodeValidation, out.Message, details)

	case service.StageGuard:
		if out.RetryAfter > 0 {
			seconds := retryAfterSeconds(out.RetryAfter)
			details.RetryAfterSeconds = seconds
			c.Header(constants.HeaderRetryAfter, strconv.Itoa(seconds))
			utils.HandleAPIErrorWithDetails(c, nil, http.StatusTooManyRequests, common.ErrCodeTooManyRequests, out.Message, details)
			return
		}
		utils.HandleAPIErrorWithDetails(c, nil, http.StatusBadRequest, common.ErrCodeRejected, out.Message, details)

	case service.StagePersist:
		status, code := persistStatus(out.ErrorClass)
		utils.HandleAPIErrorWithDetails(c, nil, status, code, out.Message, details)

	default:
		utils.HandleAPIError(c, nil, http.StatusInternalServerError, common.ErrCodeInternalServer, out.Message)
	}
}

func persistStatus(class repository.ErrorClass) (int, common.ErrorCode) {
	switch class {
	case repository.ClassUnavailable, repository.ClassResourceExhausted:
		return http.StatusServiceUnavailable, common.ErrCodeServiceUnavailable
	case repository.ClassDeadlineExceeded:
		return http.StatusGatewayTimeout, common.ErrCodeTimeout
	default:
		return http.StatusBadGateway, common.ErrCodeBadGateway
	}
}

// retryAfterSeconds rounds up so a client never retries early
func retryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		s = 1
	}
	return s
}
