package apikey

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// Repository persists API keys. Filters: provider, environment, active.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*APIKey, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]APIKey, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// FindActive returns the most recently rotated active key for provider and environment.
	FindActive(ctx context.Context, provider Provider, env Environment) (*APIKey, error)
	Save(ctx context.Context, key *APIKey) error
	// MarkUsed stamps last_used_at without touching the version or the secret.
	MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}
