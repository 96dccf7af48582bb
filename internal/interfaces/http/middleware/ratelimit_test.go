package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/infrastructure/ratelimit"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("redis: connection refused")
}

func newLimitedRouter(t *testing.T, cfg RateLimitConfig) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.Use(RateLimit(cfg))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func hit(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitMiddleware(t *testing.T) {
	store := ratelimit.NewMemoryStore(time.Minute, time.Minute)
	t.Cleanup(store.Stop)
	limiter, err := ratelimit.NewLimiter(store, "api:", 2, time.Minute)
	require.NoError(t, err)
	router := newLimitedRouter(t, RateLimitConfig{Limiter: limiter, Scope: "api"})

	first := hit(router, "10.0.0.1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, first.Header().Get("X-RateLimit-Reset"))

	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)

	rejected := hit(router, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rejected.Code)
	assert.NotEmpty(t, rejected.Header().Get("Retry-After"))
	assert.Equal(t, "0", rejected.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, dto.ErrCodeRateLimited, errorCode(t, rejected))

	// other clients have their own window
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.2").Code)
}

func TestRateLimitMiddleware_Reconfigure(t *testing.T) {
	store := ratelimit.NewMemoryStore(time.Minute, time.Minute)
	t.Cleanup(store.Stop)
	limiter, err := ratelimit.NewLimiter(store, "api:", 1, time.Minute)
	require.NoError(t, err)
	router := newLimitedRouter(t, RateLimitConfig{Limiter: limiter})

	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1").Code)

	require.NoError(t, limiter.Configure(5, time.Minute))
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	limiter, err := ratelimit.NewLimiter(failingStore{}, "auth:", 1, time.Minute)
	require.NoError(t, err)
	router := newLimitedRouter(t, RateLimitConfig{Limiter: limiter, Scope: "auth", Logger: zap.New(core)})

	for i := 0; i < 3; i++ {
		rec := hit(router, "10.0.0.1")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
	assert.Equal(t, 3, logs.FilterMessage("Rate limit store unavailable, allowing request").Len())
}

func TestClientKey(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "192.0.2.7:5555"

	assert.Equal(t, "192.0.2.7", ClientKey(c))
	c.Set(JWTUserIDKey, "user-1")
	assert.Equal(t, "192.0.2.7:user-1", ClientKey(c))
	assert.Equal(t, "192.0.2.7", IPKey(c))
}
