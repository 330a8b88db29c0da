package service

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_StartAndGet(t *testing.T) {
	env := newTestEnv(t, nil)

	sess, err := env.sessions.Start()
	require.NoError(t, err)

	assert.NotEmpty(t, sess.ID)
	assert.Regexp(t, `^[0-9a-f]{64}$`, sess.CSRFToken)
	assert.Equal(t, "website", sess.HoneypotField)
	assert.Equal(t, t0, sess.StartedAt)
	require.NotNil(t, sess.Pipeline)

	got, err := env.sessions.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = env.sessions.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_SessionsHaveSeparateRateState(t *testing.T) {
	env := newTestEnv(t, nil)
	a, err := env.sessions.Start()
	require.NoError(t, err)
	b, err := env.sessions.Start()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.CSRFToken, b.CSRFToken)

	env.clock.Advance(10 * time.Second)
	for i := 0; i < 3; i++ {
		require.True(t, a.Pipeline.Submit(context.Background(), validInput(a)).Success)
		env.clock.Advance(time.Second)
	}
	assert.False(t, a.Pipeline.Submit(context.Background(), validInput(a)).Success, "hourly layer is full")
	assert.True(t, b.Pipeline.Submit(context.Background(), validInput(b)).Success)
}

func TestSessionService_CSRFTokenIsBoundToSession(t *testing.T) {
	env := newTestEnv(t, nil)
	a, err := env.sessions.Start()
	require.NoError(t, err)
	b, err := env.sessions.Start()
	require.NoError(t, err)
	env.clock.Advance(10 * time.Second)

	in := validInput(a)
	in.CSRFToken = b.CSRFToken
	out := a.Pipeline.Submit(context.Background(), in)
	assert.False(t, out.Success)
	assert.Equal(t, RejectedMessage, out.Message)
}

func TestSessionService_EvictExpired(t *testing.T) {
	env := newTestEnv(t, nil)
	old, err := env.sessions.Start()
	require.NoError(t, err)

	env.clock.Advance(20 * time.Minute)
	fresh, err := env.sessions.Start()
	require.NoError(t, err)

	env.clock.Advance(11 * time.Minute)
	assert.Equal(t, 1, env.sessions.EvictExpired())
	assert.Equal(t, 1, env.sessions.Len())

	_, err = env.sessions.Get(old.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = env.sessions.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestSessionService_MaxSessions(t *testing.T) {
	env := newTestEnv(t, func(c *SessionConfig) { c.MaxSessions = 2 })

	for i := 0; i < 2; i++ {
		_, err := env.sessions.Start()
		require.NoError(t, err)
	}
	_, err := env.sessions.Start()
	assert.ErrorIs(t, err, ErrTooManySessions)
	assert.Equal(t, 2, env.sessions.Len())

	env.clock.Advance(31 * time.Minute)
	assert.Equal(t, 2, env.sessions.EvictExpired())
	_, err = env.sessions.Start()
	assert.NoError(t, err)
}

func TestCSRFService(t *testing.T) {
	svc := NewCSRFService()
	tok, err := svc.GenerateToken()
	require.NoError(t, err)

	assert.Len(t, tok, 64)
	_, err = hex.DecodeString(tok)
	assert.NoError(t, err)

	other, err := svc.GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}
