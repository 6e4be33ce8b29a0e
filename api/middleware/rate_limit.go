package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lepista-tech/mycelium/identity/ratelimit"
	"github.com/lepista-tech/mycelium/internal/metrics"
)

// RateLimit applies the general IP-keyed tier to every request. Skips
// health checks, which operators and orchestrators poll far more often
// than any human caller.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || isHealthPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		if err := limiter.CheckIPLimit(c.Request.Context(), c.ClientIP(), ratelimit.CategoryGeneral); err != nil {
			respondRateLimited(c, err)
			return
		}
		c.Next()
	}
}

// StaffRateLimit applies the stricter admin tier, keyed on the Email of
// the staff Profile a prior RequireStaff call attached to the request.
func StaffRateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		prof, exists := GetProfile(c)
		identifier := c.ClientIP()
		if exists {
			identifier = prof.Email
		}

		if err := limiter.CheckUserLimit(c.Request.Context(), identifier, ratelimit.CategoryAdmin); err != nil {
			respondRateLimited(c, err)
			return
		}
		c.Next()
	}
}

func isHealthPath(path string) bool {
	switch path {
	case "/health", "/health/live", "/health/ready":
		return true
	default:
		return false
	}
}

func respondRateLimited(c *gin.Context, err error) {
	var rlErr *ratelimit.RateLimitError
	scope := "unknown"
	if errors.As(err, &rlErr) {
		c.Header("X-RateLimit-Limit", strconv.Itoa(rlErr.Limit))
		c.Header("Retry-After", strconv.FormatFloat(rlErr.RetryAfter.Seconds(), 'f', 0, 64))
		scope = string(rlErr.LimitType)
	}
	metrics.RateLimitHitsTotal.WithLabelValues(scope).Inc()
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":   "rate_limit_exceeded",
		"message": "Too many requests. Please try again later.",
	})
	c.Abort()
}
