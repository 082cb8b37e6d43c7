package middleware

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "studymate/internal/errors"
	"studymate/internal/logger"
	"studymate/internal/metrics"
)

// Limiter admits or rejects one event for a key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// RateLimit rejects requests with 429 once the limiter's bucket for the key
// is empty. keyFunc returning "" exempts the request. Limiter failures are
// logged and the request is let through.
func RateLimit(limiter Limiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		if key == "" {
			c.Next()
			return
		}

		allowed, wait, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Get().Warnw("rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}
		if !allowed {
			metrics.RateLimitedTotal.Inc()
			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			abortWithError(c, apperrors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

// LoginKey limits login attempts per client IP; other actions are exempt.
func LoginKey(c *gin.Context) string {
	if c.Query("action") != "login" {
		return ""
	}
	return "login:" + c.ClientIP()
}
