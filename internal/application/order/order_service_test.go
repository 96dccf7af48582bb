package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Stats(ctx context.Context, from, to *time.Time) (*order.Stats, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Stats), args.Error(1)
}

func (m *MockOrderRepository) HasDeliveredProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, customerID, productID)
	return args.Bool(0), args.Error(1)
}

// MockProductRepository only implements what order placement touches;
// the embedded interface panics on anything else.
type MockProductRepository struct {
	catalog.ProductRepository
	mock.Mock
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	return m.Called(ctx, id, delta).Error(0)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type fakeInvoices struct {
	pdf []byte
	err error
}

func (f *fakeInvoices) RenderInvoice(context.Context, *order.Order) ([]byte, error) {
	return f.pdf, f.err
}

type fixture struct {
	orders   *MockOrderRepository
	products *MockProductRepository
	pub      *recordingPublisher
	svc      *OrderService
}

func newFixture(invoices InvoiceRenderer) *fixture {
	f := &fixture{
		orders:   new(MockOrderRepository),
		products: new(MockProductRepository),
		pub:      &recordingPublisher{},
	}
	pricing := Pricing{
		ShippingFee:      decimal.RequireFromString("5"),
		FreeShippingOver: decimal.RequireFromString("100"),
		TaxRate:          decimal.RequireFromString("0.1"),
	}
	f.svc = NewOrderService(f.orders, NewNoOpTransactionScope(f.products, f.orders), invoices, pricing, f.pub, nil)
	return f
}

func activeProduct(t *testing.T, sku string, price string, stock int) catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, "Product "+sku, decimal.RequireFromString(price))
	require.NoError(t, err)
	require.NoError(t, p.SetStock(stock))
	require.NoError(t, p.Activate())
	p.ClearDomainEvents()
	return *p
}

func testAddress() AddressInput {
	return AddressInput{Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}
}

func placedOrder(t *testing.T, customerID *uuid.UUID, qty int) *order.Order {
	t.Helper()
	o, err := order.NewOrder(customerID, "jane@example.com", "Jane", testAddress().toDomain(), []order.LineInput{
		{ProductID: uuid.New(), SKU: "MUG", Name: "Mug", UnitPrice: decimal.NewFromInt(8), Quantity: qty},
	}, decimal.Zero, decimal.Zero, "USD")
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func TestOrderService_Place(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	tee := activeProduct(t, "TEE", "19.99", 10)
	mug := activeProduct(t, "MUG", "8.00", 3)

	f.products.On("FindByIDs", ctx, []uuid.UUID{tee.ID, mug.ID}).Return([]catalog.Product{mug, tee}, nil)
	f.products.On("AdjustStock", ctx, tee.ID, -3).Return(nil)
	f.products.On("AdjustStock", ctx, mug.ID, -1).Return(nil)
	f.orders.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)

	customer := &Customer{ID: uuid.New(), Email: "jane@example.com", Name: "Jane Doe"}
	resp, err := f.svc.Place(ctx, customer, PlaceOrderRequest{
		Items: []PlaceOrderItem{
			{ProductID: tee.ID, Quantity: 2},
			{ProductID: mug.ID, Quantity: 1},
			{ProductID: tee.ID, Quantity: 1},
		},
		CustomerEmail:   "ignored@example.com",
		ShippingAddress: testAddress(),
		Notes:           "Leave at the door",
	})

	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, "jane@example.com", resp.CustomerEmail)
	assert.Equal(t, "Jane Doe", resp.CustomerName)
	assert.Equal(t, customer.ID, *resp.CustomerID)
	assert.Equal(t, "67.97", resp.Subtotal.StringFixed(2))
	assert.Equal(t, "5.00", resp.ShippingFee.StringFixed(2))
	assert.Equal(t, "6.80", resp.Tax.StringFixed(2))
	assert.Equal(t, "79.77", resp.Total.StringFixed(2))
	assert.Equal(t, "pending", resp.Status)
	assert.Contains(t, resp.Notes, "Leave at the door")
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, order.EventTypeOrderPlaced, f.pub.events[0].EventType())
	f.products.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

func TestOrderService_Place_FreeShipping(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	lamp := activeProduct(t, "LAMP", "120", 1)
	f.products.On("FindByIDs", ctx, []uuid.UUID{lamp.ID}).Return([]catalog.Product{lamp}, nil)
	f.products.On("AdjustStock", ctx, lamp.ID, -1).Return(nil)
	f.orders.On("Save", ctx, mock.Anything).Return(nil)

	resp, err := f.svc.Place(ctx, nil, PlaceOrderRequest{
		Items:           []PlaceOrderItem{{ProductID: lamp.ID, Quantity: 1}},
		CustomerEmail:   "guest@example.com",
		CustomerName:    "Guest",
		ShippingAddress: testAddress(),
	})

	require.NoError(t, err)
	assert.Nil(t, resp.CustomerID)
	assert.True(t, resp.ShippingFee.IsZero())
	assert.Equal(t, "132.00", resp.Total.StringFixed(2))
}

func TestOrderService_Place_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("inactive product", func(t *testing.T) {
		f := newFixture(nil)
		draft, err := catalog.NewProduct("DRAFT", "Draft", decimal.NewFromInt(1))
		require.NoError(t, err)
		f.products.On("FindByIDs", ctx, []uuid.UUID{draft.ID}).Return([]catalog.Product{*draft}, nil)

		_, err = f.svc.Place(ctx, nil, PlaceOrderRequest{
			Items:           []PlaceOrderItem{{ProductID: draft.ID, Quantity: 1}},
			CustomerEmail:   "guest@example.com",
			CustomerName:    "Guest",
			ShippingAddress: testAddress(),
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRODUCT_UNAVAILABLE", domainErr.Code)
	})

	t.Run("not enough stock in catalog", func(t *testing.T) {
		f := newFixture(nil)
		mug := activeProduct(t, "MUG", "8", 1)
		f.products.On("FindByIDs", ctx, []uuid.UUID{mug.ID}).Return([]catalog.Product{mug}, nil)

		_, err := f.svc.Place(ctx, nil, PlaceOrderRequest{
			Items:           []PlaceOrderItem{{ProductID: mug.ID, Quantity: 2}},
			CustomerEmail:   "guest@example.com",
			CustomerName:    "Guest",
			ShippingAddress: testAddress(),
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
		f.products.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stock lost to a concurrent order", func(t *testing.T) {
		f := newFixture(nil)
		mug := activeProduct(t, "MUG", "8", 1)
		f.products.On("FindByIDs", ctx, []uuid.UUID{mug.ID}).Return([]catalog.Product{mug}, nil)
		f.products.On("AdjustStock", ctx, mug.ID, -1).Return(shared.ErrInsufficientStock)

		_, err := f.svc.Place(ctx, nil, PlaceOrderRequest{
			Items:           []PlaceOrderItem{{ProductID: mug.ID, Quantity: 1}},
			CustomerEmail:   "guest@example.com",
			CustomerName:    "Guest",
			ShippingAddress: testAddress(),
		})
		require.Error(t, err)
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.pub.events)
	})
}

func TestOrderService_UpdateStatus_CancelReleasesStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	o := placedOrder(t, nil, 2)
	productID := o.Items[0].ProductID

	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
	f.orders.On("Save", ctx, o).Return(nil)
	f.products.On("AdjustStock", ctx, productID, 2).Return(nil).Once()

	resp, err := f.svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "cancelled", Note: "Out of stock"}, "admin@example.com")

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	require.Len(t, resp.History, 2)
	assert.Equal(t, "admin@example.com", resp.History[1].Actor)
	assert.NotNil(t, resp.CancelledAt)
	f.products.AssertExpectations(t)
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, order.EventTypeOrderStatusChanged, f.pub.events[0].EventType())
}

func TestOrderService_UpdateStatus_Confirm(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	o := placedOrder(t, nil, 1)

	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
	f.orders.On("Save", ctx, o).Return(nil)

	resp, err := f.svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "confirmed"}, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
	f.products.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)

	_, err = f.svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "shipped"}, "admin@example.com")
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
}

func TestOrderService_CancelByCustomer(t *testing.T) {
	ctx := context.Background()
	owner := Customer{ID: uuid.New(), Email: "jane@example.com"}

	t.Run("other customer's order is not found", func(t *testing.T) {
		f := newFixture(nil)
		o := placedOrder(t, &owner.ID, 1)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.svc.CancelByCustomer(ctx, Customer{ID: uuid.New()}, o.ID, CancelOrderRequest{})
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("only pending orders", func(t *testing.T) {
		f := newFixture(nil)
		o := placedOrder(t, &owner.ID, 1)
		require.NoError(t, o.TransitionTo(order.StatusConfirmed, "", "admin"))
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.svc.CancelByCustomer(ctx, owner, o.ID, CancelOrderRequest{})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("pending order", func(t *testing.T) {
		f := newFixture(nil)
		o := placedOrder(t, &owner.ID, 1)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("Save", ctx, o).Return(nil)
		f.products.On("AdjustStock", ctx, o.Items[0].ProductID, 1).Return(shared.ErrNotFound)

		resp, err := f.svc.CancelByCustomer(ctx, owner, o.ID, CancelOrderRequest{})
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		assert.Equal(t, "Cancelled by customer", resp.History[1].Note)
	})
}

func TestOrderService_GetForCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	owner := uuid.New()
	o := placedOrder(t, &owner, 1)
	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

	resp, err := f.svc.GetForCustomer(ctx, owner, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, resp.OrderNumber)

	_, err = f.svc.GetForCustomer(ctx, uuid.New(), o.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	match := mock.MatchedBy(func(filter shared.Filter) bool {
		end, ok := filter.Filters["to"].(time.Time)
		return ok && end.Equal(to.Add(24*time.Hour)) &&
			filter.Filters["status"] == "shipped" &&
			filter.OrderBy == "created_at" && filter.OrderDir == "desc"
	})
	f.orders.On("FindAll", ctx, match).Return([]order.Order{*placedOrder(t, nil, 3)}, nil)
	f.orders.On("Count", ctx, match).Return(int64(1), nil)

	page, err := f.svc.List(ctx, OrderListFilter{Status: "shipped", To: &to})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 3, page.Items[0].ItemCount)
}

func TestOrderService_RenderInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("printing disabled", func(t *testing.T) {
		f := newFixture(nil)
		_, _, err := f.svc.RenderInvoice(ctx, uuid.New())
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRINTING_DISABLED", domainErr.Code)
	})

	t.Run("renders", func(t *testing.T) {
		f := newFixture(&fakeInvoices{pdf: []byte("%PDF-1.4")})
		o := placedOrder(t, nil, 1)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		pdf, name, err := f.svc.RenderInvoice(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4"), pdf)
		assert.Equal(t, "invoice-"+o.OrderNumber+".pdf", name)
	})

	t.Run("renderer failure", func(t *testing.T) {
		f := newFixture(&fakeInvoices{err: errors.New("chrome crashed")})
		o := placedOrder(t, nil, 1)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, _, err := f.svc.RenderInvoice(ctx, o.ID)
		assert.EqualError(t, err, "chrome crashed")
	})
}

func TestOrderService_Stats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	f.orders.On("Stats", ctx, (*time.Time)(nil), (*time.Time)(nil)).Return(&order.Stats{
		CountByStatus: map[order.Status]int64{order.StatusPending: 2, order.StatusDelivered: 1},
		TotalOrders:   3,
		PaidRevenue:   decimal.RequireFromString("150.00"),
		AverageOrder:  decimal.RequireFromString("50.00"),
	}, nil)

	resp, err := f.svc.Stats(ctx, StatsQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.CountByStatus["pending"])
	assert.Equal(t, int64(0), resp.CountByStatus["refunded"])
	assert.Len(t, resp.CountByStatus, len(order.AllStatuses))
	assert.Equal(t, int64(3), resp.TotalOrders)
}
