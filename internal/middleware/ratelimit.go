package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/facultrack/attendance-backend/internal/response"
)

// RateLimiter allows a fixed number of requests per client IP in each window.
// The window starts with the client's first request.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	now      func() time.Time
	stop     chan struct{}
}

type visitor struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter creates a RateLimiter (e.g., 100 requests per 15 minutes)
// and starts a janitor that forgets expired windows. Call Stop to end it.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stop:
				return
			}
		}
	}()

	return rl
}

// Stop ends the janitor goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

// allow records a hit and returns the remaining quota and the window reset.
func (rl *RateLimiter) allow(ip string) (ok bool, remaining int, resetAt time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists || !now.Before(v.resetAt) {
		v = &visitor{resetAt: now.Add(rl.window)}
		rl.visitors[ip] = v
	}

	if v.count >= rl.limit {
		return false, 0, v.resetAt
	}
	v.count++
	return true, rl.limit - v.count, v.resetAt
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, remaining, resetAt := rl.allow(c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			retry := int(resetAt.Sub(rl.now()).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, v := range rl.visitors {
		if !now.Before(v.resetAt) {
			delete(rl.visitors, ip)
		}
	}
}
