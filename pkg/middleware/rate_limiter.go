package middleware

import (
	"sync"
	"time"

	"ai-persona-advisors/backend/pkg/config"
	"ai-persona-advisors/backend/pkg/errors"
	"ai-persona-advisors/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterOptions configures the per-client rate limiter.
type RateLimiterOptions struct {
	// Limit is the sustained request rate per client.
	Limit rate.Limit
	// Burst is the maximum burst size per client.
	Burst int
	// ExpiryDuration is how long idle client state is kept in memory.
	ExpiryDuration time.Duration
	// KeyFunc extracts the limiting key from a request.
	KeyFunc func(*gin.Context) string
}

// DefaultRateLimiterOptions keys clients by IP with the limits from the
// Security section of the application config.
func DefaultRateLimiterOptions() RateLimiterOptions {
	cfg := config.Get()
	return RateLimiterOptions{
		Limit:          rate.Limit(cfg.Security.RateLimit),
		Burst:          cfg.Security.RateLimitBurst,
		ExpiryDuration: time.Hour,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter tracks a token bucket per client key.
type RateLimiter struct {
	mu      sync.Mutex
	options RateLimiterOptions
	clients map[string]*limiterEntry
	logger  *logger.Logger
}

// NewRateLimiter creates a rate limiter; omit options to use the defaults.
func NewRateLimiter(logger *logger.Logger, options ...RateLimiterOptions) *RateLimiter {
	opts := DefaultRateLimiterOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &RateLimiter{
		options: opts,
		clients: make(map[string]*limiterEntry),
		logger:  logger,
	}
}

// Middleware returns the gin middleware enforcing the limit. Starts the
// idle-entry cleanup loop on first use.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	go r.cleanup()

	return func(c *gin.Context) {
		key := r.options.KeyFunc(c)

		if !r.getLimiter(key).Allow() {
			r.logger.Warn("Rate limit exceeded",
				"client", key,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)

			c.Error(errors.NewBadRequestError("RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later."))
			c.Header("Retry-After", "1")
			c.Abort()
			return
		}

		c.Next()
	}
}

func (r *RateLimiter) getLimiter(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.clients[key]
	if !exists {
		limiter := rate.NewLimiter(r.options.Limit, r.options.Burst)
		r.clients[key] = &limiterEntry{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}

	entry.lastSeen = time.Now()
	return entry.limiter
}

func (r *RateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)

		r.mu.Lock()
		for k, entry := range r.clients {
			if time.Since(entry.lastSeen) > r.options.ExpiryDuration {
				delete(r.clients, k)
			}
		}
		r.mu.Unlock()
	}
}
