package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func reply(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	assert.Equal(t, "v2", NewRouter(gin.New(), WithAPIVersion("v2")).apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	catalog := NewDomainGroup("catalog", "/catalog").GET("/ping", reply("pong"))
	store := NewDomainGroup("store", "/store").GET("/theme", reply("theme"))
	r.Register(catalog).Register(store)
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/catalog/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "theme", serve(engine, http.MethodGet, "/api/v1/store/theme").Body.String())
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/catalog/ping").Code)
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("items", "/items").
		GET("", reply("list")).
		POST("", reply("create")).
		PUT("/:id", reply("update")).
		PATCH("/:id", reply("patch")).
		DELETE("/:id", reply("delete"))
	assert.Equal(t, "items", g.Name())
	assert.Equal(t, "/items", g.Prefix())
	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/api/v1/items", "list"},
		{http.MethodPost, "/api/v1/items", "create"},
		{http.MethodPut, "/api/v1/items/1", "update"},
		{http.MethodPatch, "/api/v1/items/1", "patch"},
		{http.MethodDelete, "/api/v1/items/1", "delete"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestDomainGroup_MiddlewareScopesToSubgroup(t *testing.T) {
	engine := gin.New()
	mark := func(c *gin.Context) {
		c.Header("X-Guarded", "yes")
		c.Next()
	}

	g := NewDomainGroup("store", "/store")
	g.GET("/open", reply("open"))
	g.Group("account", "").Use(nil, mark).GET("/me", reply("me"))
	g.RegisterRoutes(engine.Group("/api/v1"))

	open := serve(engine, http.MethodGet, "/api/v1/store/open")
	assert.Equal(t, http.StatusOK, open.Code)
	assert.Empty(t, open.Header().Get("X-Guarded"))

	me := serve(engine, http.MethodGet, "/api/v1/store/me")
	assert.Equal(t, "me", me.Body.String())
	assert.Equal(t, "yes", me.Header().Get("X-Guarded"))
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", reply("ok"))

	r := NewRouter(engine).Use(nil, func(c *gin.Context) {
		c.AbortWithStatus(http.StatusTeapot)
	})
	assert.Len(t, r.middleware, 1)
	r.Register(NewDomainGroup("store", "/store").GET("/theme", reply("theme"))).Setup()

	assert.Equal(t, http.StatusTeapot, serve(engine, http.MethodGet, "/api/v1/store/theme").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
}
