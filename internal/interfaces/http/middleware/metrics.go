package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
)

const unmatchedRoute = "unmatched"

// HTTPMetrics records request counts, latency and in-flight requests.
// A nil metrics value turns the middleware into a pass-through.
func HTTPMetrics(metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		start := time.Now()
		metrics.RequestStarted(ctx)

		c.Next()

		metrics.RequestFinished(ctx, c.Request.Method, routePattern(c), c.Writer.Status(), time.Since(start))
	}
}

// routePattern uses the matched route template to keep label cardinality bounded
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}
