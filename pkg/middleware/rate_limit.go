package middleware

import (
	"bitwise74/dashboard-api/pkg/apperr"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiterConfig struct {
	RequestsPerSecond int
	Burst             int
	CleanupInterval   time.Duration
	TTL               time.Duration
}

type rateLimiter struct {
	cfg       RateLimiterConfig
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

func newRateLimiter(config RateLimiterConfig) *rateLimiter {
	if config.CleanupInterval == 0 {
		config.CleanupInterval = time.Minute
	}
	if config.TTL == 0 {
		config.TTL = 3 * time.Minute
	}
	if config.Burst == 0 {
		config.Burst = config.RequestsPerSecond * 2
	}

	return &rateLimiter{
		cfg:       config,
		visitors:  make(map[string]*visitor),
		lastSweep: time.Now(),
	}
}

func (r *rateLimiter) get(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.lastSweep) >= r.cfg.CleanupInterval {
		r.sweep(now)
	}

	v, exists := r.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(r.cfg.RequestsPerSecond), r.cfg.Burst)
		r.visitors[ip] = &visitor{limiter, now}
		return limiter
	}

	v.lastSeen = now
	return v.limiter
}

// sweep drops visitors idle for longer than the TTL. r.mu must be held.
func (r *rateLimiter) sweep(now time.Time) {
	for ip, v := range r.visitors {
		if now.Sub(v.lastSeen) > r.cfg.TTL {
			delete(r.visitors, ip)
		}
	}

	r.lastSweep = now
}

// RateLimiterMiddleware throttles requests per client IP. Every call creates
// its own visitor table, idle visitors are dropped while serving requests.
func RateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	r := newRateLimiter(config)

	return func(c *gin.Context) {
		if !r.get(c.ClientIP()).Allow() {
			c.Error(apperr.WithStatus(http.StatusTooManyRequests, "Too many requests"))
			c.Abort()
			return
		}

		c.Next()
	}
}
