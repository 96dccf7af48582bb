package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the persistence contract for products.
//
// Filters understood by FindAll/Count (shared.Filter.Filters keys):
// status, category, featured, min_price, max_price, in_stock.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)

	// AdjustStock atomically applies delta to stock and fails with
	// INSUFFICIENT_STOCK instead of going below zero.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
	// UpdateRating stores aggregated review figures without touching the version.
	UpdateRating(ctx context.Context, id uuid.UUID, average decimal.Decimal, count int) error
	// Categories lists distinct non-empty categories.
	Categories(ctx context.Context) ([]string, error)
}
