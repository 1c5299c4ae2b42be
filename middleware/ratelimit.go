package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter applies a per-client-IP token bucket. Audits are expensive,
// so the default allowance is deliberately low.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	rate      rate.Limit
	burst     int
	lastEvict time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const clientExpiry = 10 * time.Minute

// NewRateLimiter allows ratePerSec requests per second with the given
// burst per client IP.
func NewRateLimiter(ratePerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		rate:    rate.Limit(ratePerSec),
		burst:   burst,
	}
}

// RateLimit is the gin middleware entry point.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		rl.mu.Lock()
		client, exists := rl.clients[ip]
		if !exists {
			client = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
			rl.clients[ip] = client
		}
		client.lastSeen = time.Now()
		rl.evictStale()
		allowed := client.limiter.Allow()
		rl.mu.Unlock()

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// evictStale drops limiters for IPs not seen recently. Called with the
// mutex held, at most once per expiry window.
func (rl *RateLimiter) evictStale() {
	now := time.Now()
	if now.Sub(rl.lastEvict) < clientExpiry {
		return
	}
	rl.lastEvict = now
	for ip, client := range rl.clients {
		if now.Sub(client.lastSeen) > clientExpiry {
			delete(rl.clients, ip)
		}
	}
}
