package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/osa911/waitlist/internal/abuse"
	"github.com/osa911/waitlist/internal/models"
	"github.com/osa911/waitlist/internal/repository"
)

var t0 = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type eventRecorder struct {
	mu     sync.Mutex
	events []abuse.Event
}

func (r *eventRecorder) Emit(e abuse.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) kinds() []abuse.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []abuse.EventKind
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

type testEnv struct {
	sessions *SessionService
	clock    *testClock
	events   *eventRecorder
	repo     *repository.MemoryRepository
}

func newTestEnv(t *testing.T, mutate func(*SessionConfig), opts ...SessionOption) *testEnv {
	t.Helper()
	cfg := SessionConfig{Guard: abuse.DefaultConfig(), Collection: "inquiries"}
	if mutate != nil {
		mutate(&cfg)
	}
	env := &testEnv{
		clock:  &testClock{now: t0},
		events: &eventRecorder{},
		repo:   repository.NewMemoryRepository(),
	}
	all := append([]SessionOption{
		WithSessionClock(env.clock.Now),
		WithGuardOptions(abuse.WithEventSink(env.events)),
	}, opts...)
	env.sessions = NewSessionService(cfg, env.repo, all...)
	return env
}

func validInput(sess *Session) RawInput {
	return RawInput{
		Fields: map[string]any{
			"firstName": "Jane",
			"lastName":  "Doe",
			"email":     "jane@example.com",
			"org":       "ACME",
			"country":   "US",
		},
		CaptchaToken: "captcha-ok",
		CSRFToken:    sess.CSRFToken,
		UserAgent:    "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
		RemoteIP:     "203.0.113.7",
		Language:     "en-US",
		Timezone:     "America/New_York",
		Screen:       "1440x900",
	}
}

func TestPipeline_AcceptsValidSubmission(t *testing.T) {
	env := newTestEnv(t, nil)
	sess, err := env.sessions.Start()
	require.NoError(t, err)
	env.clock.Advance(10 * time.Second)

	out := sess.Pipeline.Submit(context.Background(), validInput(sess))

	require.True(t, out.Success, "%+v", out)
	assert.Equal(t, StageDone, out.Stage)
	assert.Equal(t, SuccessMessage, out.Message)
	assert.NotEmpty(t, out.ID)
	assert.True(t, out.ResetForm)
	assert.True(t, out.ResetCaptcha)
	assert.Equal(t, 5*time.Second, out.ClearAfter)
	assert.Equal(t, StateIdle, sess.Pipeline.State())
	assert.Empty(t, env.events.kinds())

	doc, ok := env.repo.Get("inquiries", out.ID)
	require.True(t, ok)
	assert.Equal(t, "Jane", doc.FirstName)
	assert.Equal(t, "jane@example.com", doc.Email)
	assert.Equal(t, t0.Add(10*time.Second).UnixMilli(), doc.Timestamp)
	assert.Regexp(t, `^[0-9a-f]{32}$`, doc.ClientFingerprint)
	assert.Contains(t, doc.UserAgent, "Safari")
}

func TestPipeline_HoneypotRejectsBeforePersist(t *testing.T) {
	env := newTestEnv(t, nil)
	sess, err := env.sessions.Start()
	require.NoError(t, err)
	env.clock.Advance(10 * time.Second)

	in := validInput(sess)
	in.Honeypot = "http://spam.example"
	out := sess.Pipeline.Submit(context.Background(), in)

	assert.False(t, out.Success)
	assert.Equal(t, StageGuard, out.Stage)
	assert.Equal(t, RejectedMessage, out.Message)
	assert.NotContains(t, out.Message, "honeypot")
	assert.Equal(t, []abuse.EventKind{abuse.EventHoneypot}, env.events.kinds())
	assert.Equal(t, 0, env.repo.Count("inquiries"))
}

func TestPipeline_ScriptTagIsSanitizedBeforeGuard(t *testing.T) {
	env := newTestEnv(t, nil)
	sess, err := env.sessions.Start()
	require.NoError(t, err)
	env.clock.Advance(10 * time.Second)

	in := validInput(sess)
	in.Fields["notes"] = "<script>alert(1)</script>"
	out := sess.Pipeline.Submit(context.Background(), in)

	require.True(t, out.Success, "%+v", out)
	doc, ok := env.repo.Get("inquiries", out.ID)
	require.True(t, ok)
	assert.Equal(t, "scriptalert(1)/script", doc.Notes)
	assert.NotContains(t, doc.Notes, "<")
	assert.NotContains(t, doc.Notes, ">")
	assert.Empty(t, env.events.kinds())
}

func TestPipeline_SixthSubmissionWithinMinuteIsRateLimited(t *testing.T) {
	env := newTestEnv(t, func(c *SessionConfig) {
		c.Guard.RateLayers = []abuse.RateLayer{{Max: 5, Window: time.Minute}}
	})
	sess, err := env.sessions.Start()
	require.NoError(t, err)
	env.clock.Advance(10 * time.Second)

	for i := 0; i < 5; i++ {
		out := sess.Pipeline.Submit(context.Background(), validInput(sess))
		require.True(t, out.Success, "attempt %d: %+v", i+1, out)
		env.clock.Advance(time.Second)
	}

	out := sess.Pipeline.Submit(context.Background(), validInput(sess))
	assert.False(t, out.Success)
	assert.Equal(t, StageGuard, out.Stage)
	assert.Equal(t, RejectedMessage, out.Message)
	assert.GreaterOrEqual(t, out.RetryAfter, time.Second)
	assert.LessOrEqual(t, out.RetryAfter, time.Minute)
	assert.Equal(t, []abuse.EventKind{abuse.EventRateLimitExceeded}, out.Triggered)
	assert.Equal(t, 5, env.repo.Count("inquiries"))
}

func TestPipeline_ValidationFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	sess, err := env.sessions.Start()
	require.NoError(t, err)
	env.clock.Advance(10 * time.Second)

	in := validInput(sess)
	delete(in.Fields, "org")
	in.Fields["email"] = "not-an-email"
	out := sess.Pipeline.Submit(context.Background(), in)

	assert.False(t, out.Success)
	assert.Equal(t, StageValidate, out.Stage)
	assert.Equal(t, "Validation failed: Missing or invalid field: org, Invalid email format", out.Message)
	assert.Empty(t, env.events.kinds(), "guard does not run on invalid input")
	assert.Equal(t, StateIdle, sess.Pipeline.State())
}

func TestPipeline_BackendFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		class   repository.ErrorClass
		message string
	}{
		{"permission denied", status.Error(codes.PermissionDenied, "rules"), repository.ClassPermissionDenied, "Permission denied. Please contact support."},
		{"unavailable", status.Error(codes.Unavailable, "down"), repository.ClassUnavailable, "Service temporarily unavailable. Please try again later."},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), repository.ClassDeadlineExceeded, "Request timeout. Please try again."},
		{"unknown with message", status.Error(codes.Internal, "disk on fire"), repository.ClassUnknown, "disk on fire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.repo.FailWith(tt.err)
			sess, err := env.sessions.Start()
			require.NoError(t, err)
			env.clock.Advance(10 * time.Second)

			out := sess.Pipeline.Submit(context.Background(), validInput(sess))

			assert.False(t, out.Success)
			assert.Equal(t, StagePersist, out.Stage)
			assert.Equal(t, tt.class, out.ErrorClass)
			assert.Equal(t, tt.message, out.Message)
			assert.Equal(t, StateIdle, sess.Pipeline.State())
		})
	}
}

type blockingRepo struct {
	entered chan struct{}
	release chan struct{}
}

func (r *blockingRepo) Append(ctx context.Context, _ string, _ *models.Inquiry) (string, error) {
	r.entered <- struct{}{}
	<-r.release
	return "doc-1", nil
}

func (r *blockingRepo) Close() error { return nil }

func TestPipeline_ConcurrentSubmitIsIgnored(t *testing.T) {
	repo := &blockingRepo{entered: make(chan struct{}, 1), release: make(chan struct{})}
	clock := &testClock{now: t0}
	sessions := NewSessionService(SessionConfig{Guard: abuse.DefaultConfig()}, repo, WithSessionClock(clock.Now))
	sess, err := sessions.Start()
	require.NoError(t, err)
	clock.Advance(10 * time.Second)

	first := make(chan Outcome, 1)
	go func() {
		first <- sess.Pipeline.Submit(context.Background(), validInput(sess))
	}()

	select {
	case <-repo.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first submission never reached persistence")
	}
	assert.Equal(t, StateSubmitting, sess.Pipeline.State())

	second := sess.Pipeline.Submit(context.Background(), validInput(sess))
	assert.True(t, second.Ignored)
	assert.Empty(t, second.Message)

	close(repo.release)
	out := <-first
	assert.True(t, out.Success)
	assert.Equal(t, "doc-1", out.ID)
	assert.Equal(t, StateIdle, sess.Pipeline.State())
}

type notifierFunc func(ctx context.Context, id string, inquiry *models.Inquiry) error

func (f notifierFunc) NotifyInquiry(ctx context.Context, id string, inquiry *models.Inquiry) error {
	return f(ctx, id, inquiry)
}

func TestPipeline_NotifiesAfterStore(t *testing.T) {
	got := make(chan string, 1)
	notifier := notifierFunc(func(_ context.Context, id string, inq *models.Inquiry) error {
		got <- id + ":" + inq.Email
		return nil
	})
	env := newTestEnv(t, nil, WithPipelineOptions(WithNotifier(notifier)))
	sess, err := env.sessions.Start()
	require.NoError(t, err)
	env.clock.Advance(10 * time.Second)

	out := sess.Pipeline.Submit(context.Background(), validInput(sess))
	require.True(t, out.Success)

	select {
	case v := <-got:
		assert.Equal(t, out.ID+":jane@example.com", v)
	case <-time.After(5 * time.Second):
		t.Fatal("notifier was not called")
	}
}

func TestUserMessage_CoversEveryClass(t *testing.T) {
	for _, class := range repository.ErrorClasses() {
		msg := UserMessage(class, "")
		assert.NotEmpty(t, msg, class.String())
		if class != repository.ClassUnknown {
			assert.NotEqual(t, UnexpectedMessage, msg, "class %s falls through to the default arm", class)
		}
	}
	assert.Equal(t, UnexpectedMessage, UserMessage(repository.ClassUnknown, ""))
	assert.Equal(t, "raw", UserMessage(repository.ClassUnknown, "raw"))
	assert.Equal(t, "This inquiry already exists.", UserMessage(repository.ClassAlreadyExists, "ignored"))
}
