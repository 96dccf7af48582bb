package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
)

func newCORSEngine(origins ...string) *gin.Engine {
	router := gin.New()
	router.Use(CORS(config.HTTPConfig{
		CORSAllowOrigins: origins,
		CORSAllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
		CORSAllowHeaders: []string{"Authorization", "Content-Type"},
	}))
	router.GET("/products", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestCORS(t *testing.T) {
	router := newCORSEngine("https://shop.example.com", "https://admin.example.com/")

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{"storefront origin", http.MethodGet, "https://shop.example.com", http.StatusOK, "https://shop.example.com"},
		{"dashboard origin with trailing slash in config", http.MethodGet, "https://admin.example.com", http.StatusOK, "https://admin.example.com"},
		{"unknown origin gets no headers", http.MethodGet, "https://evil.example.com", http.StatusOK, ""},
		{"same-origin request", http.MethodGet, "", http.StatusOK, ""},
		{"preflight from storefront", http.MethodOptions, "https://shop.example.com", http.StatusNoContent, "https://shop.example.com"},
		{"preflight from unknown origin", http.MethodOptions, "https://evil.example.com", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/products", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORS_AllowedOriginHeaders(t *testing.T) {
	router := newCORSEngine("https://shop.example.com")

	req := httptest.NewRequest(http.MethodOptions, "/products", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	h := w.Header()
	assert.Equal(t, "Origin", h.Get("Vary"))
	assert.Equal(t, "GET, POST, PUT, DELETE", h.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Authorization, Content-Type", h.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "43200", h.Get("Access-Control-Max-Age"))

	expose := h.Get("Access-Control-Expose-Headers")
	assert.Contains(t, expose, "X-Request-ID")
	assert.Contains(t, expose, "Retry-After")
	assert.Contains(t, expose, "Content-Disposition")
}

func TestCORS_Wildcard(t *testing.T) {
	router := newCORSEngine("*")

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Origin", "https://anyone.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Vary"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_EmptyListBlocksCrossOrigin(t *testing.T) {
	router := newCORSEngine()

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecure(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.HTTPConfig
		wantCSP  string
		wantHSTS string
	}{
		{
			name:    "development defaults",
			cfg:     config.HTTPConfig{},
			wantCSP: DefaultContentSecurityPolicy,
		},
		{
			name:     "hsts from max age",
			cfg:      config.HTTPConfig{HSTSMaxAge: 365 * 24 * time.Hour},
			wantCSP:  DefaultContentSecurityPolicy,
			wantHSTS: "max-age=31536000; includeSubDomains",
		},
		{
			name:    "configured policy",
			cfg:     config.HTTPConfig{ContentSecurityPolicy: "default-src 'self'; img-src https://cdn.example.com"},
			wantCSP: "default-src 'self'; img-src https://cdn.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Secure(tt.cfg))
			router.GET("/health", func(c *gin.Context) {
				c.String(http.StatusOK, "ok")
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			h := w.Header()
			assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
			assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
			assert.Equal(t, tt.wantCSP, h.Get("Content-Security-Policy"))
			assert.Equal(t, tt.wantHSTS, h.Get("Strict-Transport-Security"))
			assert.Contains(t, h.Get("Permissions-Policy"), "payment=()")
		})
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("generates request ID", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		_, err := uuid.Parse(w.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
	})

	t.Run("keeps client request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", "checkout-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "checkout-42", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "checkout-42", w.Body.String())
	})

	t.Run("replaces oversized request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("x", MaxRequestIDLength+1))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		_, err := uuid.Parse(w.Body.String())
		assert.NoError(t, err)
	})
}

func TestTimeout(t *testing.T) {
	t.Run("sets a deadline", func(t *testing.T) {
		router := gin.New()
		router.Use(Timeout(30 * time.Second))
		router.GET("/test", func(c *gin.Context) {
			deadline, ok := c.Request.Context().Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(30*time.Second), deadline, 5*time.Second)
			c.String(http.StatusOK, "ok")
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("zero leaves the context alone", func(t *testing.T) {
		router := gin.New()
		router.Use(Timeout(0))
		router.GET("/test", func(c *gin.Context) {
			_, ok := c.Request.Context().Deadline()
			assert.False(t, ok)
			c.String(http.StatusOK, "ok")
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
