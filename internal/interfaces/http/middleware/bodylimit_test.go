package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

const uploadPath = "/api/v1/admin/media/upload"

// newBodyLimitEngine reads the whole body and answers with its size
func newBodyLimitEngine(cfg BodyLimitConfig) *gin.Engine {
	router := gin.New()
	router.Use(BodyLimitWithConfig(cfg))
	read := func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "truncated")
			return
		}
		c.String(http.StatusOK, "%d", len(body))
	}
	router.POST("/api/v1/admin/products", read)
	router.POST(uploadPath, read)
	router.GET("/api/v1/store/products", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestBodyLimitWithConfig(t *testing.T) {
	router := newBodyLimitEngine(BodyLimitConfig{
		MaxBytes: 64,
		Routes:   map[string]int64{RouteKey(http.MethodPost, uploadPath): 1024},
	})

	tests := []struct {
		name       string
		method     string
		path       string
		size       int
		wantStatus int
	}{
		{"json body within global limit", http.MethodPost, "/api/v1/admin/products", 60, http.StatusOK},
		{"json body over global limit", http.MethodPost, "/api/v1/admin/products", 200, http.StatusRequestEntityTooLarge},
		{"upload above global limit", http.MethodPost, uploadPath, 800, http.StatusOK},
		{"upload over its own limit", http.MethodPost, uploadPath, 2048, http.StatusRequestEntityTooLarge},
		{"request without body", http.MethodGet, "/api/v1/store/products", 0, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.size > 0 {
				body = strings.NewReader(strings.Repeat("x", tt.size))
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, body))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusRequestEntityTooLarge {
				assert.Contains(t, w.Body.String(), dto.ErrCodeRequestTooLarge)
			}
		})
	}
}

func TestBodyLimit_CapsStreamedBodies(t *testing.T) {
	router := newBodyLimitEngine(BodyLimitConfig{MaxBytes: 50})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(strings.Repeat("x", 100)))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "truncated", w.Body.String())
}

func TestBodyLimit_StreamedUploadUsesRouteLimit(t *testing.T) {
	router := newBodyLimitEngine(BodyLimitConfig{
		MaxBytes: 50,
		Routes:   map[string]int64{RouteKey(http.MethodPost, uploadPath): 500},
	})

	req := httptest.NewRequest(http.MethodPost, uploadPath, strings.NewReader(strings.Repeat("x", 300)))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "300", w.Body.String())
}

func TestBodyLimit(t *testing.T) {
	router := gin.New()
	router.Use(BodyLimit(16))
	router.POST(uploadPath, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, uploadPath, strings.NewReader(strings.Repeat("x", 32))))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
