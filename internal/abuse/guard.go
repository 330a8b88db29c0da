// Package abuse holds the heuristics that flag automated or abusive form
// submissions: honeypot, fill time, rate limiting, CAPTCHA presence, CSRF
// token and content patterns.
//
// Every check here is advisory. A caller talking to the document store
// directly bypasses all of it, so it must never be the only line of defense.
package abuse

import (
	"context"
	"crypto/subtle"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/osa911/waitlist/internal/logging"
	"github.com/osa911/waitlist/internal/metrics"
)

// Verifier checks a CAPTCHA response with the issuing service.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// Config tunes the guard.
type Config struct {
	MinFillTime   time.Duration
	MaxFillTime   time.Duration
	RateLayers    []RateLayer
	FieldPolicy   FieldPolicy
	HoneypotField string
}

// DefaultConfig returns the production thresholds: a 3s..30m fill window and
// two independent rate layers, 5 per minute and 10 per hour.
func DefaultConfig() Config {
	return Config{
		MinFillTime: 3 * time.Second,
		MaxFillTime: 30 * time.Minute,
		RateLayers: []RateLayer{
			{Max: 5, Window: time.Minute},
			{Max: 10, Window: time.Hour},
		},
		FieldPolicy:   DefaultFieldPolicy(),
		HoneypotField: "website",
	}
}

// Submission is what the guard inspects. Fields must already be sanitized.
type Submission struct {
	SessionID    string
	StartedAt    time.Time
	Honeypot     string
	CaptchaToken string
	CSRFToken    string
	ExpectedCSRF string
	RemoteIP     string
	Fields       map[string]any
}

// Result has the same shape as a validation result so both can be merged.
type Result struct {
	Valid      bool
	Reasons    []string
	RetryAfter time.Duration
	Triggered  []EventKind
}

// Guard owns the per-session abuse state. It is safe for concurrent use.
type Guard struct {
	cfg      Config
	sink     EventSink
	verifier Verifier
	now      func() time.Time
	logger   *logging.Logger

	mu      sync.Mutex
	limiter *RateLimiter
}

// Option configures a Guard.
type Option func(*Guard)

// WithEventSink sets where security events go.
func WithEventSink(sink EventSink) Option {
	return func(g *Guard) { g.sink = sink }
}

// WithVerifier enables server-side CAPTCHA verification.
func WithVerifier(v Verifier) Option {
	return func(g *Guard) { g.verifier = v }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// WithLogger sets the application logger used for dropped events.
func WithLogger(l *logging.Logger) Option {
	return func(g *Guard) { g.logger = l }
}

// NewGuard creates a guard with fresh rate state.
func NewGuard(cfg Config, opts ...Option) *Guard {
	if cfg.FieldPolicy == nil {
		cfg.FieldPolicy = DefaultFieldPolicy()
	}
	g := &Guard{
		cfg:     cfg,
		now:     time.Now,
		logger:  logging.NewNopLogger(),
		limiter: NewRateLimiter(cfg.RateLayers...),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check runs every heuristic and reports all failures; none short-circuits.
// The submission is counted against the rate limit only when the limit has
// room, whatever the other checks decide.
func (g *Guard) Check(ctx context.Context, sub Submission) Result {
	now := g.now()
	res := Result{}

	fail := func(kind EventKind, reason string, detail map[string]interface{}) {
		res.Reasons = append(res.Reasons, reason)
		res.Triggered = append(res.Triggered, kind)
		g.emit(Event{Kind: kind, Timestamp: now, Session: sub.SessionID, Detail: detail})
	}

	if sub.Honeypot != "" {
		fail(EventHoneypot, "Bot detected (honeypot triggered)", map[string]interface{}{
			"field":  g.cfg.HoneypotField,
			"length": len(sub.Honeypot),
		})
	}

	fillTime := now.Sub(sub.StartedAt)
	if fillTime < g.cfg.MinFillTime {
		fail(EventFastSubmission, "Form submitted too quickly", map[string]interface{}{
			"fill_time_ms": fillTime.Milliseconds(),
		})
	}
	if fillTime > g.cfg.MaxFillTime {
		fail(EventSessionExpired, "Session expired. Please refresh and try again.", map[string]interface{}{
			"fill_time_ms": fillTime.Milliseconds(),
		})
	}

	g.mu.Lock()
	allowed, wait := g.limiter.Allow(now)
	g.mu.Unlock()
	if !allowed {
		res.RetryAfter = wait
		seconds := int(math.Ceil(wait.Seconds()))
		fail(EventRateLimitExceeded, fmt.Sprintf("Too many submissions. Please wait %d seconds.", seconds), map[string]interface{}{
			"wait_seconds": seconds,
		})
	}

	if sub.CaptchaToken == "" {
		fail(EventCaptchaFailed, "Please complete the CAPTCHA verification", map[string]interface{}{
			"reason": "missing",
		})
	} else if g.verifier != nil {
		if err := g.verifier.Verify(ctx, sub.CaptchaToken, sub.RemoteIP); err != nil {
			fail(EventCaptchaFailed, "Please complete the CAPTCHA verification", map[string]interface{}{
				"reason": err.Error(),
			})
		}
	}

	if sub.ExpectedCSRF != "" &&
		subtle.ConstantTimeCompare([]byte(sub.CSRFToken), []byte(sub.ExpectedCSRF)) != 1 {
		fail(EventCSRFMismatch, "Invalid security token. Please refresh the page.", map[string]interface{}{
			"present": sub.CSRFToken != "",
		})
	}

	var rejecting, logged []string
	for _, f := range DetectSuspicious(sub.Fields, g.cfg.FieldPolicy) {
		if f.Action == Reject {
			rejecting = append(rejecting, f.Reason)
		} else {
			logged = append(logged, f.Reason)
		}
	}
	switch {
	case len(rejecting) > 0:
		fail(EventSuspiciousPattern, "Suspicious activity detected", map[string]interface{}{
			"reasons":   rejecting,
			"log_only":  logged,
			"rejecting": true,
		})
	case len(logged) > 0:
		g.emit(Event{Kind: EventSuspiciousPattern, Timestamp: now, Session: sub.SessionID, Detail: map[string]interface{}{
			"log_only":  logged,
			"rejecting": false,
		}})
	}

	res.Valid = len(res.Reasons) == 0
	return res
}

// emit hands e to the sink. A failing or panicking sink never affects the
// decision.
func (g *Guard) emit(e Event) {
	metrics.GuardTriggersTotal.WithLabelValues(string(e.Kind)).Inc()
	if g.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			metrics.SecurityEventsDroppedTotal.Inc()
			g.logger.Warn("[Security] event sink panicked: %v", r)
		}
	}()
	if err := g.sink.Emit(e); err != nil {
		metrics.SecurityEventsDroppedTotal.Inc()
		g.logger.Warn("[Security] failed to emit %s event: %v", e.Kind, err)
	}
}
