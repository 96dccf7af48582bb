package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/infrastructure/ratelimit"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RateLimitConfig configures the rate limiting middleware
type RateLimitConfig struct {
	Limiter *ratelimit.Limiter
	// Scope labels rejections in logs and metrics, e.g. "api" or "auth"
	Scope string
	// KeyFunc derives the bucket key; defaults to ClientKey
	KeyFunc func(*gin.Context) string
	Metrics *telemetry.Metrics
	Logger  *zap.Logger
}

// ClientKey keys by client IP, plus the authenticated user when present
func ClientKey(c *gin.Context) string {
	key := c.ClientIP()
	if userID := GetJWTUserID(c); userID != "" {
		key += ":" + userID
	}
	return key
}

// IPKey keys by client IP only
func IPKey(c *gin.Context) string {
	return c.ClientIP()
}

// RateLimit returns a rate limiting middleware backed by a sliding-window limiter.
// Store failures let the request through.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = ClientKey
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		result, err := cfg.Limiter.Allow(ctx, keyFunc(c))
		if err != nil {
			log.Warn("Rate limit store unavailable, allowing request",
				zap.String("scope", cfg.Scope),
				zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			cfg.Metrics.RateLimited(ctx, cfg.Scope)
			log.Info("Request rate limited",
				zap.String("scope", cfg.Scope),
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				c.GetString("request_id"),
			))
			return
		}

		c.Next()
	}
}
