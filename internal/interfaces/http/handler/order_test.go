package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/order"
	"github.com/shopfront/backend/internal/domain/catalog"
	domainorder "github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/persistence"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	router   *gin.Engine
	products *persistence.GormProductRepository
	tee      *catalog.Product
}

var shipTo = map[string]string{
	"line1": "1 Main St", "city": "Springfield", "postal_code": "12345", "country": "US",
}

func newOrderFixture(t *testing.T, customer *auth.Claims) *orderFixture {
	t.Helper()
	db := newTestDB(t, &catalog.Product{}, &domainorder.Order{}, &domainorder.Item{}, &domainorder.StatusChange{})
	products := persistence.NewGormProductRepository(db)
	svc := order.NewOrderService(
		persistence.NewGormOrderRepository(db),
		persistence.NewGormTransactionScope(db),
		nil,
		order.Pricing{ShippingFee: decimal.NewFromInt(5), FreeShippingOver: decimal.NewFromInt(100)},
		nil, nil,
	)
	h := NewOrderHandler(svc, nil)

	tee, err := catalog.NewProduct("TEE-01", "Classic Tee", decimal.RequireFromString("20.00"))
	require.NoError(t, err)
	require.NoError(t, tee.SetStock(5))
	require.NoError(t, tee.Activate())
	require.NoError(t, products.Save(context.Background(), tee))

	r := gin.New()
	admin := r.Group("/admin/orders", withClaims(adminClaims("admin")))
	admin.GET("", h.List)
	admin.GET("/stats", h.Stats)
	admin.GET("/by-number/:number", h.GetByNumber)
	admin.GET("/:id", h.Get)
	admin.PUT("/:id/status", h.UpdateStatus)
	admin.POST("/:id/cancel", h.Cancel)
	admin.POST("/:id/paid", h.MarkPaid)
	admin.PUT("/:id/shipping", h.UpdateShipping)
	admin.POST("/:id/notes", h.AddNote)
	admin.GET("/:id/invoice", h.Invoice)

	store := r.Group("/store/orders", withClaims(customer))
	store.POST("", h.Place)
	store.GET("", h.ListMine)
	store.GET("/:id", h.GetMine)
	store.POST("/:id/cancel", h.CancelMine)

	return &orderFixture{router: r, products: products, tee: tee}
}

func (f *orderFixture) stock(t *testing.T) int {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), f.tee.ID)
	require.NoError(t, err)
	return p.Stock
}

func (f *orderFixture) place(t *testing.T, qty int, extra map[string]any) *httpResult {
	t.Helper()
	body := map[string]any{
		"items":            []map[string]any{{"product_id": f.tee.ID, "quantity": qty}},
		"shipping_address": shipTo,
	}
	for k, v := range extra {
		body[k] = v
	}
	w := doJSON(t, f.router, http.MethodPost, "/store/orders", body)
	return &httpResult{code: w.Code, order: decode[order.OrderResponse](t, w)}
}

type httpResult struct {
	code  int
	order envelope[order.OrderResponse]
}

func TestOrderHandler_GuestCheckout(t *testing.T) {
	f := newOrderFixture(t, nil)

	t.Run("guest must identify themselves", func(t *testing.T) {
		res := f.place(t, 1, nil)
		assert.Equal(t, http.StatusBadRequest, res.code)
		assert.Equal(t, "ERR_INVALID_EMAIL", res.order.Error.Code)
	})

	t.Run("places and reserves stock", func(t *testing.T) {
		res := f.place(t, 2, map[string]any{"customer_email": "guest@example.com", "customer_name": "Guest"})
		require.Equal(t, http.StatusCreated, res.code)

		o := res.order.Data
		assert.Equal(t, "pending", o.Status)
		assert.Equal(t, "unpaid", o.PaymentStatus)
		assert.Nil(t, o.CustomerID)
		assert.True(t, decimal.RequireFromString("40").Equal(o.Subtotal))
		assert.True(t, decimal.RequireFromString("5").Equal(o.ShippingFee))
		assert.True(t, decimal.RequireFromString("45").Equal(o.Total))
		assert.Equal(t, 3, f.stock(t))
	})

	t.Run("insufficient stock", func(t *testing.T) {
		res := f.place(t, 10, map[string]any{"customer_email": "guest@example.com", "customer_name": "Guest"})
		assert.Equal(t, http.StatusUnprocessableEntity, res.code)
		assert.Equal(t, dto.ErrCodeInsufficientStock, res.order.Error.Code)
		assert.Equal(t, 3, f.stock(t))
	})

	t.Run("guest has no order history", func(t *testing.T) {
		w := doJSON(t, f.router, http.MethodGet, "/store/orders", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOrderHandler_CustomerOrders(t *testing.T) {
	claims := customerClaims("jane@example.com")
	f := newOrderFixture(t, claims)

	res := f.place(t, 1, map[string]any{"customer_name": "Jane"})
	require.Equal(t, http.StatusCreated, res.code)
	placed := res.order.Data
	assert.Equal(t, "jane@example.com", placed.CustomerEmail)
	require.NotNil(t, placed.CustomerID)
	assert.Equal(t, claims.UserID, placed.CustomerID.String())

	w := doJSON(t, f.router, http.MethodGet, "/store/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]order.OrderListItemResponse](t, w)
	require.Len(t, mine.Data, 1)
	assert.Equal(t, placed.OrderNumber, mine.Data[0].OrderNumber)

	w = doJSON(t, f.router, http.MethodGet, "/store/orders/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, f.router, http.MethodPost, "/store/orders/"+placed.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", decode[order.OrderResponse](t, w).Data.Status)
	assert.Equal(t, 5, f.stock(t))

	// a cancelled order cannot be cancelled again
	w = doJSON(t, f.router, http.MethodPost, "/store/orders/"+placed.ID.String()+"/cancel", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOrderHandler_AdminWorkflow(t *testing.T) {
	f := newOrderFixture(t, nil)
	res := f.place(t, 1, map[string]any{"customer_email": "guest@example.com", "customer_name": "Guest"})
	require.Equal(t, http.StatusCreated, res.code)
	base := "/admin/orders/" + res.order.Data.ID.String()

	w := doJSON(t, f.router, http.MethodPut, base+"/status", map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERR_INVALID_TRANSITION", decode[any](t, w).Error.Code)

	for _, status := range []string{"confirmed", "processing", "shipped"} {
		w = doJSON(t, f.router, http.MethodPut, base+"/status", map[string]string{"status": status, "note": "moving on"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = doJSON(t, f.router, http.MethodPut, base+"/shipping", map[string]string{"carrier": "UPS", "tracking_number": "1Z999"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, f.router, http.MethodPost, base+"/paid", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, f.router, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	o := decode[order.OrderResponse](t, w).Data
	assert.Equal(t, "shipped", o.Status)
	assert.Equal(t, "paid", o.PaymentStatus)
	assert.Equal(t, "1Z999", o.TrackingNumber)
	require.Len(t, o.History, 5)
	assert.Equal(t, "shipped", o.History[3].To)
	assert.Equal(t, "admin@shop.test", o.History[3].Actor)

	w = doJSON(t, f.router, http.MethodGet, "/admin/orders/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[order.StatsResponse](t, w).Data
	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.CountByStatus["shipped"])

	w = doJSON(t, f.router, http.MethodGet, "/admin/orders?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_InvoiceDisabled(t *testing.T) {
	f := newOrderFixture(t, nil)
	w := doJSON(t, f.router, http.MethodGet, "/admin/orders/"+uuid.NewString()+"/invoice", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestOrderHandler_GetByNumber(t *testing.T) {
	f := newOrderFixture(t, nil)
	placed := f.place(t, 1, map[string]any{"customer_email": "guest@example.com", "customer_name": "Guest"})
	require.Equal(t, http.StatusCreated, placed.code)
	number := placed.order.Data.OrderNumber

	w := doJSON(t, f.router, http.MethodGet, "/admin/orders/by-number/"+strings.ToLower(number), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, placed.order.Data.ID, decode[order.OrderResponse](t, w).Data.ID)

	w = doJSON(t, f.router, http.MethodGet, "/admin/orders/by-number/ORD-19700101-ZZZZZZ", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
