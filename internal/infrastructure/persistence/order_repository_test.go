package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testShipTo = order.Address{Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}

func placeTestOrder(t *testing.T, customerID *uuid.UUID, productID uuid.UUID, price int64) *order.Order {
	t.Helper()
	o, err := order.NewOrder(customerID, "buyer@example.com", "Buyer", testShipTo, []order.LineInput{
		{ProductID: productID, SKU: "TEE", Name: "Tee", UnitPrice: decimal.NewFromInt(price), Quantity: 1},
	}, decimal.Zero, decimal.Zero, "USD")
	require.NoError(t, err)
	return o
}

func newOrderTestDB(t *testing.T) *GormOrderRepository {
	return NewGormOrderRepository(newSQLiteDB(t, &order.Order{}, &order.Item{}, &order.StatusChange{}))
}

func TestGormOrderRepository_SaveAndLoad(t *testing.T) {
	repo := newOrderTestDB(t)
	ctx := context.Background()

	customerID := uuid.New()
	o := placeTestOrder(t, &customerID, uuid.New(), 20)
	require.NoError(t, repo.Save(ctx, o))

	require.NoError(t, o.TransitionTo(order.StatusConfirmed, "checked", "admin"))
	require.NoError(t, repo.Save(ctx, o))

	loaded, err := repo.FindByNumber(ctx, o.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, loaded.Status)
	assert.Equal(t, testShipTo.City, loaded.ShippingAddress.City)
	require.Len(t, loaded.Items, 1)
	require.Len(t, loaded.History, 2)
	assert.Equal(t, order.StatusConfirmed, loaded.History[1].ToStatus)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_ListAndStats(t *testing.T) {
	repo := newOrderTestDB(t)
	ctx := context.Background()

	alice := uuid.New()
	productID := uuid.New()

	paid := placeTestOrder(t, &alice, productID, 30)
	require.NoError(t, paid.MarkPaid("admin"))
	require.NoError(t, repo.Save(ctx, paid))

	paid2 := placeTestOrder(t, nil, uuid.New(), 10)
	require.NoError(t, paid2.MarkPaid("admin"))
	require.NoError(t, repo.Save(ctx, paid2))

	cancelled := placeTestOrder(t, &alice, uuid.New(), 99)
	require.NoError(t, cancelled.Cancel("", "admin", false))
	require.NoError(t, repo.Save(ctx, cancelled))

	mine, err := repo.FindAll(ctx, shared.Filter{Filters: map[string]interface{}{"customer_id": alice}})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	count, err := repo.Count(ctx, shared.Filter{Filters: map[string]interface{}{"status": order.StatusCancelled}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	stats, err := repo.Stats(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.CountByStatus[order.StatusPending])
	assert.Equal(t, int64(0), stats.CountByStatus[order.StatusShipped])
	assert.Equal(t, "40.00", stats.PaidRevenue.StringFixed(2))
	assert.Equal(t, "20.00", stats.AverageOrder.StringFixed(2))

	future := time.Now().Add(time.Hour)
	stats, err = repo.Stats(ctx, &future, nil)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalOrders)
	assert.True(t, stats.AverageOrder.IsZero())
}

func TestGormOrderRepository_HasDeliveredProduct(t *testing.T) {
	repo := newOrderTestDB(t)
	ctx := context.Background()

	customerID := uuid.New()
	productID := uuid.New()
	o := placeTestOrder(t, &customerID, productID, 15)
	require.NoError(t, repo.Save(ctx, o))

	ok, err := repo.HasDeliveredProduct(ctx, customerID, productID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, o.TransitionTo(order.StatusConfirmed, "", "admin"))
	require.NoError(t, o.TransitionTo(order.StatusProcessing, "", "admin"))
	require.NoError(t, o.UpdateShipping("UPS", "1Z"))
	require.NoError(t, o.TransitionTo(order.StatusShipped, "", "admin"))
	require.NoError(t, o.TransitionTo(order.StatusDelivered, "", "admin"))
	require.NoError(t, repo.Save(ctx, o))

	ok, err = repo.HasDeliveredProduct(ctx, customerID, productID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasDeliveredProduct(ctx, uuid.New(), productID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGormOrderRepository_CountSQL(t *testing.T) {
	db, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE .*order_number ILIKE \$1 OR customer_email ILIKE \$2 OR customer_name ILIKE \$3`).
		WithArgs("%ORD-1%", "%ORD-1%", "%ORD-1%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.Count(context.Background(), shared.Filter{Search: "ORD-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
