package favorite

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// MaxPerCustomer caps how many products a customer can keep as favorites
const MaxPerCustomer = 500

// Favorite links a customer to a product they saved
type Favorite struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_customer_product"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_customer_product;index"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (Favorite) TableName() string {
	return "favorites"
}

// NewFavorite creates a favorite
func NewFavorite(customerID, productID uuid.UUID) (*Favorite, error) {
	if customerID == uuid.Nil || productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FAVORITE", "Customer and product are required")
	}
	return &Favorite{
		ID:         uuid.New(),
		CustomerID: customerID,
		ProductID:  productID,
		CreatedAt:  time.Now(),
	}, nil
}

// Repository persists favorites
type Repository interface {
	Find(ctx context.Context, customerID, productID uuid.UUID) (*Favorite, error)
	// ListByCustomer returns favorites newest first
	ListByCustomer(ctx context.Context, customerID uuid.UUID, page, pageSize int) ([]Favorite, int64, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	// ContainsAny returns which of productIDs the customer has saved
	ContainsAny(ctx context.Context, customerID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	// Create inserts the favorite; an existing pair is left untouched
	Create(ctx context.Context, fav *Favorite) error
	Delete(ctx context.Context, customerID, productID uuid.UUID) error
}
