package logging

import (
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SecurityLogger writes security events as JSON lines so they can be shipped
// to an external monitoring pipeline. It shares the rotated writer of the
// application logger.
type SecurityLogger struct {
	mu     sync.Mutex
	out    *errWriter
	logger zerolog.Logger
}

// errWriter remembers the last write failure so Write can report it.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

// NewSecurityLogger builds a security event logger on top of w.
func NewSecurityLogger(w io.Writer) *SecurityLogger {
	out := &errWriter{w: w}
	return &SecurityLogger{
		out: out,
		logger: zerolog.New(out).With().
			Str("stream", "security").
			Logger(),
	}
}

// Write emits a single event. The returned error reflects a failed write of
// this event only.
func (s *SecurityLogger) Write(kind, session string, at time.Time, detail map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.out.err = nil
	s.logger.Warn().
		Str("type", kind).
		Time("timestamp", at.UTC()).
		Str("session", session).
		Fields(detail).
		Msg("security event")
	return s.out.err
}
