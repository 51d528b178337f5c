package server

import (
	"net/http"
	"sync"
	"time"

	"sportbeacon/internal/api"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps a token-bucket limiter per client IP. Entries unused
// for longer than ttl are evicted by a background sweep.
type RateLimiter struct {
	mu      sync.RWMutex
	clients map[string]*client
	rate    rate.Limit
	burst   int
	ttl     time.Duration
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int, ttl time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		rate:    rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
	}

	go rl.sweep()

	return rl
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for ip, c := range rl.clients {
			if time.Since(c.lastSeen) > rl.ttl {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow reports whether the client identified by ip may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.RLock()
	c, ok := rl.clients[ip]
	rl.mu.RUnlock()

	if ok {
		rl.mu.Lock()
		c.lastSeen = time.Now()
		rl.mu.Unlock()
		return c.limiter.Allow()
	}

	rl.mu.Lock()
	// Re-check under the write lock; a concurrent request may have created
	// the entry already.
	if c, ok = rl.clients[ip]; !ok {
		c = &client{limiter: rate.NewLimiter(rl.rate, rl.burst), lastSeen: time.Now()}
		rl.clients[ip] = c
	}
	rl.mu.Unlock()

	return c.limiter.Allow()
}

// RateLimitMiddleware throttles every route by client IP. Tip submission
// retries rely on idempotency keys rather than exemption from the limit.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := NewRateLimiter(rps, burst, 3*time.Minute)

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
