package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/apikey"
	"github.com/shopfront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAPIKeyRepository implements apikey.Repository using GORM
type GormAPIKeyRepository struct {
	db *gorm.DB
}

// NewGormAPIKeyRepository creates a new GormAPIKeyRepository
func NewGormAPIKeyRepository(db *gorm.DB) *GormAPIKeyRepository {
	return &GormAPIKeyRepository{db: db}
}

// FindByID finds an API key by ID
func (r *GormAPIKeyRepository) FindByID(ctx context.Context, id uuid.UUID) (*apikey.APIKey, error) {
	var key apikey.APIKey
	if err := r.db.WithContext(ctx).First(&key, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &key, nil
}

// FindAll lists API keys matching the filter
func (r *GormAPIKeyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]apikey.APIKey, error) {
	var keys []apikey.APIKey
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&apikey.APIKey{}), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, APIKeySortFields, "created_at"))
	if err := query.Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// Count counts API keys matching the filter
func (r *GormAPIKeyRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&apikey.APIKey{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindActive returns the newest active key for provider and environment
func (r *GormAPIKeyRepository) FindActive(ctx context.Context, provider apikey.Provider, env apikey.Environment) (*apikey.APIKey, error) {
	var key apikey.APIKey
	if err := r.db.WithContext(ctx).
		Where("provider = ? AND environment = ? AND active = ?", provider, env, true).
		Order("COALESCE(last_rotated_at, created_at) DESC").
		First(&key).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &key, nil
}

// Save creates or updates an API key
func (r *GormAPIKeyRepository) Save(ctx context.Context, key *apikey.APIKey) error {
	return saveVersioned(r.db.WithContext(ctx), key)
}

// MarkUsed updates last_used_at only
func (r *GormAPIKeyRepository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return requireAffected(r.db.WithContext(ctx).Model(&apikey.APIKey{}).
		Where("id = ?", id).
		UpdateColumn("last_used_at", at))
}

// Delete removes an API key
func (r *GormAPIKeyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.WithContext(ctx).Delete(&apikey.APIKey{}, "id = ?", id))
}

func (r *GormAPIKeyRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "provider":
			query = query.Where("provider = ?", value)
		case "environment":
			query = query.Where("environment = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		}
	}
	return query
}
