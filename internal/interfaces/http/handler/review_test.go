package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcatalog "github.com/shopfront/backend/internal/application/catalog"
	"github.com/shopfront/backend/internal/application/favorite"
	"github.com/shopfront/backend/internal/application/review"
	"github.com/shopfront/backend/internal/domain/catalog"
	domainfavorite "github.com/shopfront/backend/internal/domain/favorite"
	domainorder "github.com/shopfront/backend/internal/domain/order"
	domainreview "github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/event"
	"github.com/shopfront/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engagementFixture struct {
	router   *gin.Engine
	products *persistence.GormProductRepository
	mug      *catalog.Product
}

// newEngagementFixture wires reviews, the rating projector and favorites over
// one database with a synchronous event bus
func newEngagementFixture(t *testing.T, customer *auth.Claims) *engagementFixture {
	t.Helper()
	db := newTestDB(t, &catalog.Product{}, &domainreview.Review{}, &domainfavorite.Favorite{},
		&domainorder.Order{}, &domainorder.Item{}, &domainorder.StatusChange{})
	products := persistence.NewGormProductRepository(db)
	reviews := persistence.NewGormReviewRepository(db)

	bus := event.NewInMemoryEventBus(nil)
	productService := appcatalog.NewProductService(products, nil, nil)
	bus.Subscribe(review.NewRatingProjector(reviews, productService, nil))

	reviewService := review.NewService(reviews, products, persistence.NewGormOrderRepository(db), bus, nil)
	rh := NewReviewHandler(reviewService, nil)
	fh := NewFavoriteHandler(favorite.NewService(persistence.NewGormFavoriteRepository(db), products, nil))

	mug, err := catalog.NewProduct("MUG-01", "Enamel Mug", decimal.RequireFromString("12.50"))
	require.NoError(t, err)
	require.NoError(t, mug.Activate())
	require.NoError(t, products.Save(context.Background(), mug))

	r := gin.New()
	admin := r.Group("/admin/reviews", withClaims(adminClaims("editor")))
	admin.GET("", rh.List)
	admin.GET("/:id", rh.Get)
	admin.POST("/:id/approve", rh.Approve)
	admin.POST("/:id/reject", rh.Reject)
	admin.POST("/:id/spam", rh.MarkSpam)
	admin.PUT("/:id/reply", rh.Reply)
	admin.DELETE("/:id", rh.Delete)
	admin.POST("/bulk-moderate", rh.BulkModerate)

	store := r.Group("/store", withClaims(customer))
	store.POST("/reviews", rh.Submit)
	store.GET("/products/:slug/reviews", rh.ListForProduct)
	store.GET("/products/:slug/reviews/summary", rh.Summary)
	store.GET("/favorites", fh.List)
	store.POST("/favorites", fh.Add)
	store.DELETE("/favorites/:product_id", fh.Remove)
	store.POST("/favorites/contains", fh.Contains)

	return &engagementFixture{router: r, products: products, mug: mug}
}

func (f *engagementFixture) submit(t *testing.T, rating int, name string) review.PublicReviewResponse {
	t.Helper()
	w := doJSON(t, f.router, http.MethodPost, "/store/reviews", map[string]any{
		"product_id":   f.mug.ID,
		"author_name":  name,
		"author_email": name + "@example.com",
		"rating":       rating,
		"body":         "Keeps coffee warm for ages.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[review.PublicReviewResponse](t, w).Data
}

func TestReviewHandler_ModerationUpdatesRating(t *testing.T) {
	f := newEngagementFixture(t, nil)
	first := f.submit(t, 5, "alice")
	second := f.submit(t, 2, "bob")
	third := f.submit(t, 4, "carol")

	productPath := "/store/products/" + f.mug.ID.String() + "/reviews"

	// pending reviews are not public
	w := doJSON(t, f.router, http.MethodGet, productPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]review.PublicReviewResponse](t, w).Data)

	w = doJSON(t, f.router, http.MethodGet, "/admin/reviews?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]review.ReviewResponse](t, w).Data, 3)

	w = doJSON(t, f.router, http.MethodPost, "/admin/reviews/"+second.ID.String()+"/reject", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, f.router, http.MethodPost, "/admin/reviews/bulk-moderate", map[string]any{
		"ids": []uuid.UUID{first.ID, third.ID, uuid.New()}, "action": "approve",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	bulk := decode[review.BulkModerateResult](t, w).Data
	assert.ElementsMatch(t, []uuid.UUID{first.ID, third.ID}, bulk.Succeeded)
	assert.Len(t, bulk.Failed, 1)

	w = doJSON(t, f.router, http.MethodPost, "/admin/reviews/"+second.ID.String()+"/spam", nil)
	require.Equal(t, http.StatusOK, w.Code)
	moderated := decode[review.ReviewResponse](t, w).Data
	assert.Equal(t, "spam", moderated.Status)
	assert.Equal(t, "editor@shop.test", moderated.ModeratedBy)

	w = doJSON(t, f.router, http.MethodGet, productPath+"/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[review.SummaryResponse](t, w).Data
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 4.5, summary.Average, 0.001)
	assert.Equal(t, 1, summary.Distribution[5])

	p, err := f.products.FindByID(context.Background(), f.mug.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("4.5").Equal(p.RatingAverage), p.RatingAverage.String())
	assert.Equal(t, 2, p.ReviewCount)

	w = doJSON(t, f.router, http.MethodPut, "/admin/reviews/"+first.ID.String()+"/reply", map[string]string{"reply": "Thanks Alice!"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, f.router, http.MethodGet, productPath+"?sort=highest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	public := decode[[]review.PublicReviewResponse](t, w).Data
	require.Len(t, public, 2)
	assert.Equal(t, first.ID, public[0].ID)
	assert.Equal(t, "Thanks Alice!", public[0].AdminReply)
	assert.NotContains(t, w.Body.String(), "alice@example.com")

	// deleting an approved review takes it out of the rating
	w = doJSON(t, f.router, http.MethodDelete, "/admin/reviews/"+third.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	p, err = f.products.FindByID(context.Background(), f.mug.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.ReviewCount)
	assert.True(t, decimal.NewFromInt(5).Equal(p.RatingAverage))
}

func TestReviewHandler_CustomerReviewsOnce(t *testing.T) {
	claims := customerClaims("jane@example.com")
	f := newEngagementFixture(t, claims)

	body := map[string]any{
		"product_id": f.mug.ID, "author_name": "Jane", "rating": 4, "body": "Solid mug, good handle.",
	}
	w := doJSON(t, f.router, http.MethodPost, "/store/reviews", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.False(t, decode[review.PublicReviewResponse](t, w).Data.VerifiedPurchase)

	w = doJSON(t, f.router, http.MethodPost, "/store/reviews", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	body["product_id"] = uuid.New()
	w = doJSON(t, f.router, http.MethodPost, "/store/reviews", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ERR_PRODUCT_UNAVAILABLE", decode[any](t, w).Error.Code)
}

func TestFavoriteHandler_SaveAndList(t *testing.T) {
	f := newEngagementFixture(t, customerClaims("jane@example.com"))
	other := uuid.New()

	for i := 0; i < 2; i++ {
		w := doJSON(t, f.router, http.MethodPost, "/store/favorites", map[string]any{"product_id": f.mug.ID})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := doJSON(t, f.router, http.MethodGet, "/store/favorites", nil)
	require.Equal(t, http.StatusOK, w.Code)
	saved := decode[[]favorite.FavoriteResponse](t, w)
	require.Len(t, saved.Data, 1)
	assert.True(t, saved.Data[0].Available)
	require.NotNil(t, saved.Data[0].Product)
	assert.Equal(t, int64(1), saved.Meta.Total)

	w = doJSON(t, f.router, http.MethodPost, "/store/favorites/contains", map[string]any{
		"product_ids": []uuid.UUID{f.mug.ID, other},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	contains := decode[map[string]bool](t, w).Data
	assert.True(t, contains[f.mug.ID.String()])
	assert.False(t, contains[other.String()])

	w = doJSON(t, f.router, http.MethodDelete, "/store/favorites/"+f.mug.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, f.router, http.MethodGet, "/store/favorites", nil)
	assert.Empty(t, decode[[]favorite.FavoriteResponse](t, w).Data)
}

func TestFavoriteHandler_RequiresCustomer(t *testing.T) {
	f := newEngagementFixture(t, nil)
	w := doJSON(t, f.router, http.MethodGet, "/store/favorites", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
