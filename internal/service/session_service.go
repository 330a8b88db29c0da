package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osa911/waitlist/internal/abuse"
	"github.com/osa911/waitlist/internal/api/validation"
	"github.com/osa911/waitlist/internal/logging"
	"github.com/osa911/waitlist/internal/metrics"
	"github.com/osa911/waitlist/internal/repository"
)

// Session is one rendering of the inquiry form. It owns its abuse state and
// its pipeline, so two visitors never share a rate window.
type Session struct {
	ID            string
	CSRFToken     string
	HoneypotField string
	StartedAt     time.Time
	Pipeline      *Pipeline
}

// SessionConfig tunes the sessions a SessionService hands out.
type SessionConfig struct {
	Guard      abuse.Config
	Collection string
	// TTL is how long an unused session is kept. Zero uses Guard.MaxFillTime.
	TTL time.Duration
	// MaxSessions caps live sessions; Start fails with ErrTooManySessions at
	// the cap. Zero means no cap.
	MaxSessions int
}

// SessionService issues and looks up form sessions
type SessionService struct {
	cfg       SessionConfig
	repo      repository.InquiryRepository
	validator *validation.Validator
	csrf      CSRFService
	logger    *logging.Logger
	now       func() time.Time

	guardOpts    []abuse.Option
	pipelineOpts []PipelineOption

	mu       sync.RWMutex
	sessions map[string]*Session
}

// SessionOption configures a SessionService.
type SessionOption func(*SessionService)

// WithGuardOptions is applied to every session's guard.
func WithGuardOptions(opts ...abuse.Option) SessionOption {
	return func(s *SessionService) { s.guardOpts = append(s.guardOpts, opts...) }
}

// WithPipelineOptions is applied to every session's pipeline.
func WithPipelineOptions(opts ...PipelineOption) SessionOption {
	return func(s *SessionService) { s.pipelineOpts = append(s.pipelineOpts, opts...) }
}

// WithSessionClock replaces time.Now for sessions, guards and pipelines.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

// WithSessionLogger sets the logger.
func WithSessionLogger(l *logging.Logger) SessionOption {
	return func(s *SessionService) { s.logger = l }
}

// NewSessionService creates a new session service
func NewSessionService(cfg SessionConfig, repo repository.InquiryRepository, opts ...SessionOption) *SessionService {
	if cfg.TTL <= 0 {
		cfg.TTL = cfg.Guard.MaxFillTime
	}
	if cfg.Guard.HoneypotField == "" {
		cfg.Guard.HoneypotField = abuse.DefaultConfig().HoneypotField
	}
	s := &SessionService{
		cfg:       cfg,
		repo:      repo,
		validator: validation.New(),
		csrf:      NewCSRFService(),
		logger:    logging.NewNopLogger(),
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start issues a new session with fresh rate state.
func (s *SessionService) Start() (*Session, error) {
	token, err := s.csrf.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF token: %w", err)
	}

	sess := &Session{
		ID:            uuid.NewString(),
		CSRFToken:     token,
		HoneypotField: s.cfg.Guard.HoneypotField,
		StartedAt:     s.now(),
	}

	guardOpts := append([]abuse.Option{
		abuse.WithClock(s.now),
		abuse.WithLogger(s.logger),
	}, s.guardOpts...)
	guard := abuse.NewGuard(s.cfg.Guard, guardOpts...)

	pipelineOpts := append([]PipelineOption{
		WithPipelineClock(s.now),
		WithPipelineLogger(s.logger),
	}, s.pipelineOpts...)
	sess.Pipeline = NewPipeline(PipelineConfig{
		SessionID:  sess.ID,
		StartedAt:  sess.StartedAt,
		CSRFToken:  sess.CSRFToken,
		Collection: s.cfg.Collection,
	}, s.validator, guard, s.repo, pipelineOpts...)

	s.mu.Lock()
	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		s.mu.Unlock()
		return nil, ErrTooManySessions
	}
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	metrics.ActiveSessions.Set(float64(n))

	return sess, nil
}

// Get returns the session with id, or ErrSessionNotFound.
func (s *SessionService) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// EvictExpired drops sessions older than the TTL and returns how many went.
// A session that is still submitting is kept until it finishes.
func (s *SessionService) EvictExpired() int {
	cutoff := s.now().Add(-s.cfg.TTL)

	s.mu.Lock()
	evicted := 0
	for id, sess := range s.sessions {
		if sess.StartedAt.Before(cutoff) && sess.Pipeline.State() != StateSubmitting {
			delete(s.sessions, id)
			evicted++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return evicted
}

// Len returns the number of live sessions.
func (s *SessionService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
