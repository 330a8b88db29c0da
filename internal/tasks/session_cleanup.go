package tasks

import (
	"sync"
	"time"

	"github.com/osa911/waitlist/internal/logging"
)

// DefaultCleanupInterval is how often stale form sessions are dropped
const DefaultCleanupInterval = time.Minute

// SessionEvicter is implemented by service.SessionService
type SessionEvicter interface {
	EvictExpired() int
}

// SessionCleanup handles periodic eviction of expired form sessions
type SessionCleanup struct {
	sessions SessionEvicter
	interval time.Duration
	logger   *logging.Logger
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewSessionCleanup creates a new session cleanup task
func NewSessionCleanup(sessions SessionEvicter, interval time.Duration, logger *logging.Logger) *SessionCleanup {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SessionCleanup{
		sessions: sessions,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins the session cleanup task in the background
func (sc *SessionCleanup) Start() {
	sc.wg.Add(1)
	go sc.runPeriodically()
}

// Stop stops the task and waits for a running pass to finish
func (sc *SessionCleanup) Stop() {
	sc.stopOnce.Do(func() { close(sc.done) })
	sc.wg.Wait()
}

// runPeriodically runs the cleanup task at regular intervals
func (sc *SessionCleanup) runPeriodically() {
	defer sc.wg.Done()

	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sc.cleanup()
		case <-sc.done:
			return
		}
	}
}

// cleanup performs the actual session eviction
func (sc *SessionCleanup) cleanup() {
	if n := sc.sessions.EvictExpired(); n > 0 {
		sc.logger.Debug("[Sessions] evicted %d expired sessions", n)
	}
}
