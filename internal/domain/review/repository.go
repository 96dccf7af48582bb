package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// Repository persists reviews
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Review, error)
	// FindAll filters by status, product_id, rating, verified and search
	FindAll(ctx context.Context, filter shared.Filter) ([]Review, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsForCustomer(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
	// RatingDistribution counts approved reviews per rating for a product
	RatingDistribution(ctx context.Context, productID uuid.UUID) (map[int]int, error)
	Save(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id uuid.UUID) error
}
