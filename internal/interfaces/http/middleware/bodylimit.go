package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
)

// BodyLimitConfig caps request bodies. Routes overrides MaxBytes per route,
// keyed by RouteKey of the method and the registered gin path.
type BodyLimitConfig struct {
	MaxBytes int64
	Routes   map[string]int64
}

// RouteKey builds the BodyLimitConfig.Routes key of a route
func RouteKey(method, fullPath string) string {
	return method + " " + fullPath
}

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return BodyLimitWithConfig(BodyLimitConfig{MaxBytes: maxBytes})
}

// BodyLimitWithConfig rejects bodies whose declared length exceeds the
// route's limit and caps streamed bodies at the same size
func BodyLimitWithConfig(cfg BodyLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		maxBytes := cfg.MaxBytes
		if limit, ok := cfg.Routes[RouteKey(c.Request.Method, c.FullPath())]; ok {
			maxBytes = limit
		}

		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				c.GetString("request_id"),
			))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
