package theme

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists themes
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Theme, error)
	FindActive(ctx context.Context) (*Theme, error)
	FindAll(ctx context.Context) ([]Theme, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Save(ctx context.Context, theme *Theme) error
	// Activate deactivates every other theme and activates id in one transaction.
	Activate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
