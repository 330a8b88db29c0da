package abuse

import (
	"regexp"
	"time"

	"github.com/osa911/waitlist/internal/logging"
)

// EventKind identifies which heuristic fired.
type EventKind string

const (
	EventHoneypot          EventKind = "honeypot_triggered"
	EventFastSubmission    EventKind = "fast_submission"
	EventSessionExpired    EventKind = "session_expired"
	EventRateLimitExceeded EventKind = "rate_limit_exceeded"
	EventCaptchaFailed     EventKind = "captcha_failed"
	EventCSRFMismatch      EventKind = "csrf_mismatch"
	EventSuspiciousPattern EventKind = "suspicious_pattern"
)

// Event is a structured security signal for out-of-band review.
type Event struct {
	Kind      EventKind
	Timestamp time.Time
	Session   string
	Detail    map[string]interface{}
}

// EventSink receives security events. Emission is best effort: the guard
// ignores returned errors.
type EventSink interface {
	Emit(Event) error
}

// LogSink writes events through the JSON security logger.
type LogSink struct {
	logger *logging.SecurityLogger
}

// NewLogSink creates a sink over logger.
func NewLogSink(logger *logging.SecurityLogger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(e Event) error {
	return s.logger.Write(string(e.Kind), e.Session, e.Timestamp, Redact(e.Detail))
}

const maxDetailLength = 64

var emailRE = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)

// Redact masks email addresses and truncates long strings in detail. Nested
// string slices are redacted element-wise.
func Redact(detail map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(detail))
	for k, v := range detail {
		switch val := v.(type) {
		case string:
			out[k] = redactString(val)
		case []string:
			masked := make([]string, len(val))
			for i, s := range val {
				masked[i] = redactString(s)
			}
			out[k] = masked
		default:
			out[k] = v
		}
	}
	return out
}

func redactString(s string) string {
	s = emailRE.ReplaceAllString(s, "[EMAIL]")
	if len(s) > maxDetailLength {
		r := []rune(s)
		if len(r) > maxDetailLength {
			s = string(r[:maxDetailLength]) + "…[TRUNCATED]"
		}
	}
	return s
}
