package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/catalog"
	domaincatalog "github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/persistence"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductRouter(t *testing.T, customer *auth.Claims) *gin.Engine {
	t.Helper()
	db := newTestDB(t, &domaincatalog.Product{})
	svc := catalog.NewProductService(persistence.NewGormProductRepository(db), nil, nil)
	h := NewProductHandler(svc)

	r := gin.New()
	admin := r.Group("/admin/products", withClaims(adminClaims("editor")))
	admin.GET("", h.List)
	admin.POST("", h.Create)
	admin.GET("/:id", h.Get)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
	admin.POST("/:id/activate", h.Activate)
	admin.POST("/:id/archive", h.Archive)
	admin.POST("/:id/draft", h.RestoreToDraft)
	admin.POST("/:id/stock", h.AdjustStock)

	store := r.Group("/store/products", withClaims(customer))
	store.GET("", h.StoreList)
	store.GET("/categories", h.Categories)
	store.GET("/:slug", h.StoreGet)
	return r
}

func createProduct(t *testing.T, r *gin.Engine, sku, name string, stock int) catalog.ProductResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/admin/products", map[string]any{
		"sku": sku, "name": name, "price": "19.99", "stock": stock, "category": "Apparel",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[catalog.ProductResponse](t, w).Data
}

func TestProductHandler_CreateAndPublish(t *testing.T) {
	r := newProductRouter(t, nil)

	p := createProduct(t, r, "tee-01", "Classic Tee", 5)
	assert.Equal(t, "TEE-01", p.SKU)
	assert.Equal(t, "classic-tee", p.Slug)
	assert.Equal(t, "draft", p.Status)

	// drafts are invisible to the storefront
	w := doJSON(t, r, http.MethodGet, "/store/products/classic-tee", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/admin/products/"+p.ID.String()+"/activate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "active", decode[catalog.ProductResponse](t, w).Data.Status)

	w = doJSON(t, r, http.MethodGet, "/store/products/classic-tee", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, p.ID, decode[catalog.ProductResponse](t, w).Data.ID)

	// activating twice is a business rule violation
	w = doJSON(t, r, http.MethodPost, "/admin/products/"+p.ID.String()+"/activate", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ERR_ALREADY_ACTIVE", decode[any](t, w).Error.Code)
}

func TestProductHandler_DuplicateSlugGetsSuffix(t *testing.T) {
	r := newProductRouter(t, nil)

	first := createProduct(t, r, "TEE-01", "Classic Tee", 1)
	second := createProduct(t, r, "TEE-02", "Classic Tee", 1)

	assert.Equal(t, "classic-tee", first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Contains(t, second.Slug, "classic-tee-")
}

func TestProductHandler_StoreListHidesDrafts(t *testing.T) {
	r := newProductRouter(t, nil)

	active := createProduct(t, r, "TEE-01", "Classic Tee", 3)
	createProduct(t, r, "TEE-02", "Draft Tee", 3)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/admin/products/"+active.ID.String()+"/activate", nil).Code)

	w := doJSON(t, r, http.MethodGet, "/store/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode[[]catalog.ProductResponse](t, w)
	require.Len(t, env.Data, 1)
	assert.Equal(t, active.ID, env.Data[0].ID)
	assert.Equal(t, int64(1), env.Meta.Total)

	w = doJSON(t, r, http.MethodGet, "/admin/products?page_size=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]catalog.ProductResponse](t, w).Data, 2)

	w = doJSON(t, r, http.MethodGet, "/store/products/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Apparel"}, decode[[]string](t, w).Data)
}

func TestProductHandler_AdjustStock(t *testing.T) {
	r := newProductRouter(t, nil)
	p := createProduct(t, r, "TEE-01", "Classic Tee", 2)
	path := "/admin/products/" + p.ID.String() + "/stock"

	w := doJSON(t, r, http.MethodPost, path, map[string]int{"delta": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 5, decode[catalog.ProductResponse](t, w).Data.Stock)

	w = doJSON(t, r, http.MethodPost, path, map[string]int{"delta": -6})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInsufficientStock, decode[any](t, w).Error.Code)
}

func TestProductHandler_Validation(t *testing.T) {
	r := newProductRouter(t, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"missing sku", http.MethodPost, "/admin/products", map[string]any{"name": "Tee", "price": "1"}, http.StatusBadRequest, dto.ErrCodeValidation},
		{"bad image url", http.MethodPost, "/admin/products", map[string]any{"sku": "A", "name": "Tee", "images": []string{"nope"}}, http.StatusBadRequest, dto.ErrCodeValidation},
		{"malformed id", http.MethodGet, "/admin/products/abc", nil, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"unknown id", http.MethodGet, "/admin/products/" + uuid.NewString(), nil, http.StatusNotFound, dto.ErrCodeNotFound},
		{"bad status filter", http.MethodGet, "/admin/products?status=gone", nil, http.StatusBadRequest, dto.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, decode[any](t, w).Error.Code)
		})
	}
}
