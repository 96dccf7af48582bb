package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Repository persists orders together with their items and history.
//
// Filters understood by FindAll/Count: status, payment_status,
// customer_id, from, to (time.Time on created_at).
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, order *Order) error
	Stats(ctx context.Context, from, to *time.Time) (*Stats, error)
	// HasDeliveredProduct reports whether the customer has a delivered order containing the product.
	HasDeliveredProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
}

// Stats aggregates order counts and revenue
type Stats struct {
	CountByStatus map[Status]int64 `json:"count_by_status"`
	TotalOrders   int64            `json:"total_orders"`
	PaidRevenue   decimal.Decimal  `json:"paid_revenue"`
	AverageOrder  decimal.Decimal  `json:"average_order"`
}
