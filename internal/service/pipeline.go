package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/osa911/waitlist/internal/abuse"
	"github.com/osa911/waitlist/internal/api/sanitization"
	"github.com/osa911/waitlist/internal/api/validation"
	"github.com/osa911/waitlist/internal/logging"
	"github.com/osa911/waitlist/internal/metrics"
	"github.com/osa911/waitlist/internal/models"
	"github.com/osa911/waitlist/internal/repository"
)

const tracerName = "github.com/osa911/waitlist/internal/service"

// ClearAfter is how long the client keeps a success message on screen.
const ClearAfter = 5 * time.Second

// notifyTimeout bounds the background notification after a stored inquiry.
const notifyTimeout = 10 * time.Second

// State is the pipeline's position in a submission.
type State int32

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stage names the step a submission stopped at.
type Stage string

const (
	StageValidate Stage = "validate"
	StageGuard    Stage = "guard"
	StagePersist  Stage = "persist"
	StageDone     Stage = "done"
)

// RawInput is a submission exactly as the client sent it.
type RawInput struct {
	Fields       map[string]any
	Honeypot     string
	CaptchaToken string
	CSRFToken    string
	UserAgent    string
	RemoteIP     string
	Language     string
	Timezone     string
	Screen       string
}

// Outcome is what the caller shows the visitor. Message is always set unless
// Ignored.
type Outcome struct {
	Success bool
	Ignored bool
	Message string
	ID      string
	Stage   Stage

	// Reasons lists validation failures; guard reasons stay server side.
	Reasons    []string
	Triggered  []abuse.EventKind
	RetryAfter time.Duration
	ErrorClass repository.ErrorClass

	ResetForm    bool
	ResetCaptcha bool
	ClearAfter   time.Duration
}

// PipelineConfig binds a pipeline to one form session.
type PipelineConfig struct {
	SessionID  string
	StartedAt  time.Time
	CSRFToken  string
	Collection string
}

// Pipeline runs sanitize, validate, guard and persist for one session. Only
// one submission runs at a time; a concurrent Submit is ignored.
type Pipeline struct {
	cfg       PipelineConfig
	validator *validation.Validator
	guard     *abuse.Guard
	repo      repository.InquiryRepository
	notifier  Notifier
	logger    *logging.Logger
	now       func() time.Time
	tracer    trace.Tracer

	state atomic.Int32
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithNotifier announces stored inquiries through n.
func WithNotifier(n Notifier) PipelineOption {
	return func(p *Pipeline) { p.notifier = n }
}

// WithPipelineClock replaces time.Now.
func WithPipelineClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// WithPipelineLogger sets the logger.
func WithPipelineLogger(l *logging.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates an idle pipeline.
func NewPipeline(cfg PipelineConfig, v *validation.Validator, g *abuse.Guard, repo repository.InquiryRepository, opts ...PipelineOption) *Pipeline {
	if cfg.Collection == "" {
		cfg.Collection = "inquiries"
	}
	p := &Pipeline{
		cfg:       cfg,
		validator: v,
		guard:     g,
		repo:      repo,
		logger:    logging.NewNopLogger(),
		now:       time.Now,
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State reports the current state.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Submit runs one submission to completion. It returns Outcome{Ignored: true}
// without side effects when another submission is in flight.
func (p *Pipeline) Submit(ctx context.Context, in RawInput) Outcome {
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateSubmitting)) {
		metrics.SubmissionsTotal.WithLabelValues("ignored").Inc()
		return Outcome{Ignored: true}
	}
	defer p.state.Store(int32(StateIdle))

	ctx, span := p.tracer.Start(ctx, "inquiry.submit",
		trace.WithAttributes(attribute.String("inquiry.session", p.cfg.SessionID)))
	defer span.End()

	out, label := p.run(ctx, in)

	if out.Success {
		p.state.Store(int32(StateSucceeded))
	} else {
		p.state.Store(int32(StateFailed))
		span.SetStatus(codes.Error, string(out.Stage))
	}
	span.SetAttributes(attribute.String("inquiry.outcome", label))
	metrics.SubmissionsTotal.WithLabelValues(label).Inc()
	p.logger.Debug("[Inquiry] session %s: %s -> %s", p.cfg.SessionID, out.Stage, p.State())

	return out
}

func (p *Pipeline) run(ctx context.Context, in RawInput) (Outcome, string) {
	now := p.now()

	_, span := p.tracer.Start(ctx, "inquiry.sanitize")
	fields := sanitization.Sanitize(in.Fields)
	span.End()

	_, span = p.tracer.Start(ctx, "inquiry.validate")
	vr := p.validator.Validate(fields)
	span.End()
	if !vr.Valid {
		return Outcome{
			Stage:   StageValidate,
			Message: ValidationMessage(vr.Reasons),
			Reasons: vr.Reasons,
		}, "validation_failed"
	}

	gctx, span := p.tracer.Start(ctx, "inquiry.guard")
	gr := p.guard.Check(gctx, abuse.Submission{
		SessionID:    p.cfg.SessionID,
		StartedAt:    p.cfg.StartedAt,
		Honeypot:     in.Honeypot,
		CaptchaToken: in.CaptchaToken,
		CSRFToken:    in.CSRFToken,
		ExpectedCSRF: p.cfg.CSRFToken,
		RemoteIP:     in.RemoteIP,
		Fields:       fields,
	})
	span.End()
	if !gr.Valid {
		p.logger.Warn("[Inquiry] session %s rejected: %s", p.cfg.SessionID, strings.Join(gr.Reasons, "; "))
		return Outcome{
			Stage:      StageGuard,
			Message:    RejectedMessage,
			Triggered:  gr.Triggered,
			RetryAfter: gr.RetryAfter,
		}, "rejected"
	}

	doc := models.NewInquiry(fields)
	doc.UserAgent = sanitization.SanitizeUserAgent(in.UserAgent)
	doc.Timestamp = now.UnixMilli()
	doc.ClientFingerprint = abuse.Fingerprint(abuse.FingerprintInput{
		UserAgent: in.UserAgent,
		Language:  in.Language,
		Timezone:  in.Timezone,
		Screen:    in.Screen,
		RemoteIP:  in.RemoteIP,
	})

	pctx, span := p.tracer.Start(ctx, "inquiry.persist",
		trace.WithAttributes(attribute.String("inquiry.collection", p.cfg.Collection)))
	started := time.Now()
	id, err := p.repo.Append(pctx, p.cfg.Collection, doc)
	metrics.PersistDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		be := repository.Classify(err)
		span.RecordError(be)
		span.SetStatus(codes.Error, be.Class.String())
		span.End()
		p.logger.Error("[Inquiry] session %s: failed to store inquiry: %v", p.cfg.SessionID, be)
		return Outcome{
			Stage:      StagePersist,
			Message:    UserMessage(be.Class, be.Message),
			ErrorClass: be.Class,
		}, "backend_error"
	}
	span.End()

	p.logger.Info("[Inquiry] stored %s for session %s", id, p.cfg.SessionID)
	p.notify(ctx, id, doc)

	return Outcome{
		Success:      true,
		Stage:        StageDone,
		Message:      SuccessMessage,
		ID:           id,
		ResetForm:    true,
		ResetCaptcha: true,
		ClearAfter:   ClearAfter,
	}, "success"
}

func (p *Pipeline) notify(ctx context.Context, id string, doc *models.Inquiry) {
	if p.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		if err := p.notifier.NotifyInquiry(ctx, id, doc); err != nil {
			p.logger.Warn("[Inquiry] notification for %s failed: %v", id, err)
		}
	}()
}
