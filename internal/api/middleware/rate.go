package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/osa911/waitlist/internal/api/constants"
	"github.com/osa911/waitlist/internal/api/dto/common"
	"github.com/osa911/waitlist/internal/utils"
)

// RateLimitConfig defines configuration for the rate limiter
type RateLimitConfig struct {
	// Requests per second
	RPS float64
	// Burst size (number of requests that can be made in a single burst)
	Burst int
	// Buckets idle for longer than TTL are dropped. Zero means 10 minutes.
	TTL time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// gcEvery is how many lookups pass between sweeps of idle buckets
const gcEvery = 1000

// IPRateLimiter is a coarse token bucket per client IP. It sits in front of
// the per-session abuse guard and only protects the process itself.
type IPRateLimiter struct {
	cfg RateLimitConfig
	now func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  int
}

// NewIPRateLimiter creates a limiter with one bucket per client IP
func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	return &IPRateLimiter{
		cfg:      cfg,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

func (rl *IPRateLimiter) limiter(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= gcEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.cfg.TTL {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Len returns the number of tracked clients
func (rl *IPRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Middleware rejects requests over the limit with 429 and Retry-After
func (rl *IPRateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := 1
	if rl.cfg.RPS > 0 {
		retryAfter = int(math.Ceil(1 / rl.cfg.RPS))
	}

	return func(c *gin.Context) {
		lim := rl.limiter(utils.GetRealIP(c))

		if !lim.AllowN(rl.now(), 1) {
			c.Header(constants.HeaderRetryAfter, strconv.Itoa(retryAfter))
			utils.HandleAPIError(c, nil, http.StatusTooManyRequests, common.ErrCodeTooManyRequests,
				"Rate limit exceeded. Please try again later.")
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.cfg.Burst))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(lim.TokensAt(rl.now()))))
		c.Next()
	}
}
