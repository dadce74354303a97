package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter counts requests per key in fixed windows.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	clients map[string]*windowCount
	now     func() time.Time
}

type windowCount struct {
	start time.Time
	count int
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*windowCount),
		now:     time.Now,
	}
}

// Allow records one request for key. A non-positive limit disables limiting.
func (rl *RateLimiter) Allow(key string) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	wc, ok := rl.clients[key]
	if !ok || now.Sub(wc.start) >= rl.window {
		rl.clients[key] = &windowCount{start: now, count: 1}
		rl.evict(now)
		return true
	}

	if wc.count >= rl.limit {
		return false
	}
	wc.count++
	return true
}

// evict drops expired windows once the table grows.
func (rl *RateLimiter) evict(now time.Time) {
	if len(rl.clients) < 1024 {
		return
	}
	for k, wc := range rl.clients {
		if now.Sub(wc.start) >= rl.window {
			delete(rl.clients, k)
		}
	}
}

func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": limiter.window.Seconds(),
			})
			return
		}
		c.Next()
	}
}
