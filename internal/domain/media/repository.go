package media

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// Repository persists media assets
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Asset, error)
	// FindAll filters by folder, content_type (prefix), status and search (file name, alt text)
	FindAll(ctx context.Context, filter shared.Filter) ([]Asset, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// FindStalePending returns pending assets created before cutoff
	FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]Asset, error)
	Save(ctx context.Context, asset *Asset) error
	Delete(ctx context.Context, id uuid.UUID) error
}
