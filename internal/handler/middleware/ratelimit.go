package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/MAVERICK-VF142/Drx.MediMate/pkg/response"
)

// RateLimiter hands out one token bucket per key.
type RateLimiter struct {
	mu      sync.Mutex
	limits  map[string]*visitor
	every   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
	lastGC  time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows limit requests per window for each key, with bursts
// of up to burst requests.
func NewRateLimiter(limit int, window time.Duration, burst int) *RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	if burst <= 0 {
		burst = limit
	}
	return &RateLimiter{
		limits:  make(map[string]*visitor),
		every:   rate.Every(window / time.Duration(limit)),
		burst:   burst,
		idleTTL: 3 * window,
		now:     time.Now,
	}
}

// Allow reports whether a request for key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.collect(now)

	v, ok := rl.limits[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.limits[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// collect drops idle keys at most once per idleTTL. Callers hold rl.mu.
func (rl *RateLimiter) collect(now time.Time) {
	if now.Sub(rl.lastGC) < rl.idleTTL {
		return
	}
	rl.lastGC = now
	for key, v := range rl.limits {
		if now.Sub(v.lastSeen) > rl.idleTTL {
			delete(rl.limits, key)
		}
	}
}

// RateLimit rejects requests from a client IP that exceeds its budget.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			response.TooManyRequests(c, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
