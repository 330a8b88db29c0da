package abuse

import "time"

// RateWindow is a sliding window of submission timestamps. Entries older than
// Window relative to the time of a check are evicted before the check runs.
type RateWindow struct {
	max    int
	window time.Duration
	stamps []time.Time // oldest first
}

// NewRateWindow allows max submissions within window.
func NewRateWindow(max int, window time.Duration) *RateWindow {
	return &RateWindow{max: max, window: window}
}

func (w *RateWindow) evict(now time.Time) {
	cutoff := now.Add(-w.window)
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	w.stamps = w.stamps[i:]
}

// wait returns how long until the window has room, zero if it has room now.
func (w *RateWindow) wait(now time.Time) time.Duration {
	w.evict(now)
	if len(w.stamps) < w.max {
		return 0
	}
	return w.window - now.Sub(w.stamps[0])
}

func (w *RateWindow) record(now time.Time) {
	w.stamps = append(w.stamps, now)
}

// Len returns the number of timestamps currently held.
func (w *RateWindow) Len() int {
	return len(w.stamps)
}

// RateLayer configures one window of a RateLimiter.
type RateLayer struct {
	Max    int
	Window time.Duration
}

// RateLimiter combines independent windows. An attempt is recorded in every
// window only when all of them have room, so a rejected attempt never eats
// into another layer's budget. It is not safe for concurrent use; the Guard
// serializes access.
type RateLimiter struct {
	windows []*RateWindow
}

// NewRateLimiter builds a limiter from layers. Layers with a non-positive
// Max are skipped.
func NewRateLimiter(layers ...RateLayer) *RateLimiter {
	rl := &RateLimiter{}
	for _, l := range layers {
		if l.Max <= 0 || l.Window <= 0 {
			continue
		}
		rl.windows = append(rl.windows, NewRateWindow(l.Max, l.Window))
	}
	return rl
}

// Allow records an attempt at now if every window has room. Otherwise it
// returns the longest wait among the full windows.
func (rl *RateLimiter) Allow(now time.Time) (bool, time.Duration) {
	var wait time.Duration
	for _, w := range rl.windows {
		if d := w.wait(now); d > wait {
			wait = d
		}
	}
	if wait > 0 {
		return false, wait
	}
	for _, w := range rl.windows {
		w.record(now)
	}
	return true, 0
}
