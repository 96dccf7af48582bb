package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/infrastructure/config"
)

// DefaultContentSecurityPolicy fits an API that only returns JSON and PDF documents
const DefaultContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

const permissionsPolicy = "camera=(), geolocation=(), microphone=(), payment=(), usb=()"

// CORSMaxAge is how long browsers may cache a preflight answer
const CORSMaxAge = 12 * time.Hour

// corsExposeHeaders are the response headers storefront and dashboard
// scripts need: request correlation, rate limit state and invoice file names.
var corsExposeHeaders = []string{
	"X-Request-ID",
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"X-RateLimit-Reset",
	"Retry-After",
	"Content-Disposition",
}

// CORS answers cross-origin requests from http.cors_allow_origins. An empty
// list blocks every cross-origin caller. Preflight requests always end here
// with 204; only allowed origins get the CORS headers. Tokens travel in the
// Authorization header, so Allow-Credentials is never sent.
func CORS(cfg config.HTTPConfig) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(cfg.CORSAllowOrigins))
	wildcard := false
	for _, origin := range cfg.CORSAllowOrigins {
		if origin == "*" {
			wildcard = true
		}
		allowed[strings.TrimRight(origin, "/")] = struct{}{}
	}
	methods := strings.Join(cfg.CORSAllowMethods, ", ")
	headers := strings.Join(cfg.CORSAllowHeaders, ", ")
	expose := strings.Join(corsExposeHeaders, ", ")
	maxAge := strconv.Itoa(int(CORSMaxAge.Seconds()))

	return func(c *gin.Context) {
		allowOrigin := ""
		if origin := c.GetHeader("Origin"); wildcard {
			allowOrigin = "*"
		} else if _, ok := allowed[origin]; ok && origin != "" {
			allowOrigin = origin
		}

		if allowOrigin != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", allowOrigin)
			if !wildcard {
				h.Add("Vary", "Origin")
			}
			if methods != "" {
				h.Set("Access-Control-Allow-Methods", methods)
			}
			if headers != "" {
				h.Set("Access-Control-Allow-Headers", headers)
			}
			h.Set("Access-Control-Expose-Headers", expose)
			h.Set("Access-Control-Max-Age", maxAge)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Secure sets the response security headers. Strict-Transport-Security is
// sent only when http.hsts_max_age is positive.
func Secure(cfg config.HTTPConfig) gin.HandlerFunc {
	csp := cfg.ContentSecurityPolicy
	if csp == "" {
		csp = DefaultContentSecurityPolicy
	}
	var hsts string
	if cfg.HSTSMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d; includeSubDomains", int64(cfg.HSTSMaxAge.Seconds()))
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", csp)
		h.Set("Permissions-Policy", permissionsPolicy)
		if hsts != "" {
			h.Set("Strict-Transport-Security", hsts)
		}
		c.Next()
	}
}

// RequestID adds a unique request ID to each request. A client supplied
// X-Request-ID is kept when it is short enough to be safe in logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" || len(requestID) > MaxRequestIDLength {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// Timeout bounds the request context so that database and storage calls
// made by handlers give up after timeout
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
