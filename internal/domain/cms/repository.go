package cms

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// PageRepository persists pages together with their blocks
type PageRepository interface {
	// FindByID loads the page with blocks ordered by position
	FindByID(ctx context.Context, id uuid.UUID) (*Page, error)
	FindBySlug(ctx context.Context, languageCode, slug string) (*Page, error)
	// FindTranslation returns the page translating baseID into languageCode
	FindTranslation(ctx context.Context, baseID uuid.UUID, languageCode string) (*Page, error)
	FindTranslations(ctx context.Context, baseID uuid.UUID) ([]Page, error)
	// FindAll filters by status, language_code and search (title/slug)
	FindAll(ctx context.Context, filter shared.Filter) ([]Page, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsBySlug(ctx context.Context, languageCode, slug string, excludeID *uuid.UUID) (bool, error)
	// Save writes the page and its blocks, deleting blocks no longer on the page
	Save(ctx context.Context, page *Page) error
	// Delete removes the page, its blocks and its translations
	Delete(ctx context.Context, id uuid.UUID) error
}
