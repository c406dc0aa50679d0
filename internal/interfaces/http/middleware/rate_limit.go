package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/turtacn/crp/internal/application/dto"
	"github.com/turtacn/crp/internal/infrastructure/monitoring"
	"github.com/turtacn/crp/pkg/errors"
	"github.com/turtacn/crp/pkg/logger"
)

// limiterIdleTTL evicts limiters of clients that went quiet.
const limiterIdleTTL = 10 * time.Minute

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
}

// NewIPRateLimiter creates a limiter allowing rps requests per second per IP.
// It returns nil when rps is not positive, which disables limiting.
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	return &IPRateLimiter{
		limiters: cache.New(limiterIdleTTL, 2*limiterIdleTTL),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// Allow consumes one token for key.
func (l *IPRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	var limiter *rate.Limiter
	if v, ok := l.limiters.Get(key); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(l.limit, l.burst)
	}
	// refresh the idle expiry on every hit
	l.limiters.SetDefault(key, limiter)
	l.mu.Unlock()

	return limiter.Allow()
}

// Burst returns the bucket size.
func (l *IPRateLimiter) Burst() int {
	return l.burst
}

// RateLimitMiddleware rejects clients that submit faster than the limiter allows.
// A nil limiter lets every request through; metrics may be nil.
func RateLimitMiddleware(limiter *IPRateLimiter, metrics *monitoring.Metrics, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		ip := c.ClientIP()
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Burst()))
		if limiter.Allow(ip) {
			c.Next()
			return
		}

		route := c.FullPath()
		if metrics != nil {
			metrics.RecordRateLimitHit(route)
		}
		log.Warn(c.Request.Context(), "rate limit exceeded", logger.Fields{
			"client_ip": ip,
			"route":     route,
		})
		c.Header("Retry-After", "1")
		dto.SendError(c, errors.ErrRateLimitExceeded())
		c.Abort()
	}
}
