// ratelimit.go - Per-IP rate limiting for public write endpoints

package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"go-blog-backend/apperr"
)

const (
	limiterIdle  = 5 * time.Minute // forget an IP after this long
	limiterSweep = 3 * time.Minute
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	rate      rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*ipLimiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > limiterSweep {
		for key, l := range rl.limiters {
			if now.Sub(l.lastSeen) > limiterIdle {
				delete(rl.limiters, key)
			}
		}
		rl.lastSweep = now
	}

	l, ok := rl.limiters[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = l
	}
	l.lastSeen = now
	return l.limiter.AllowN(now, 1)
}

// Middleware rejects a client that exceeds its budget with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rate <= 0 || rl.allow(c.ClientIP()) {
			c.Next()
			return
		}
		retryAfter := max(int(1.0/float64(rl.rate)), 1)
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		WriteError(c, apperr.New(apperr.KindRateLimited, "rate limit exceeded"))
	}
}
