package i18n

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// LanguageRepository persists languages
type LanguageRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Language, error)
	FindByCode(ctx context.Context, code string) (*Language, error)
	FindDefault(ctx context.Context) (*Language, error)
	FindAll(ctx context.Context, activeOnly bool) ([]Language, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, lang *Language) error
	// SetDefault clears the current default and marks id as default in one transaction.
	SetDefault(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TranslationRepository persists translation strings.
// Filters: language, namespace.
type TranslationRepository interface {
	FindAll(ctx context.Context, filter shared.Filter) ([]Translation, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	FindByKey(ctx context.Context, languageCode, namespace, key string) (*Translation, error)
	// Map returns key -> value for one language and namespace.
	Map(ctx context.Context, languageCode, namespace string) (map[string]string, error)
	Namespaces(ctx context.Context) ([]string, error)
	// Upsert inserts or updates by (language, namespace, key).
	Upsert(ctx context.Context, translations ...*Translation) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByLanguage(ctx context.Context, languageCode string) error
}
