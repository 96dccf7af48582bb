package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/media"
	"github.com/shopfront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormMediaRepository implements media.Repository using GORM
type GormMediaRepository struct {
	db *gorm.DB
}

// NewGormMediaRepository creates a new GormMediaRepository
func NewGormMediaRepository(db *gorm.DB) *GormMediaRepository {
	return &GormMediaRepository{db: db}
}

// FindByID finds an asset by ID
func (r *GormMediaRepository) FindByID(ctx context.Context, id uuid.UUID) (*media.Asset, error) {
	var asset media.Asset
	if err := r.db.WithContext(ctx).First(&asset, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &asset, nil
}

// FindAll lists assets matching the filter
func (r *GormMediaRepository) FindAll(ctx context.Context, filter shared.Filter) ([]media.Asset, error) {
	var assets []media.Asset
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&media.Asset{}), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, MediaSortFields, "created_at"))
	if err := query.Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// Count counts assets matching the filter
func (r *GormMediaRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&media.Asset{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindStalePending returns pending uploads created before cutoff, oldest first
func (r *GormMediaRepository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]media.Asset, error) {
	var assets []media.Asset
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", media.StatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// Save creates or updates an asset
func (r *GormMediaRepository) Save(ctx context.Context, asset *media.Asset) error {
	return saveVersioned(r.db.WithContext(ctx), asset)
}

// Delete removes an asset row
func (r *GormMediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.WithContext(ctx).Delete(&media.Asset{}, "id = ?", id))
}

func (r *GormMediaRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("file_name ILIKE ? OR alt_text ILIKE ?", searchPattern, searchPattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "folder":
			query = query.Where("folder = ?", value)
		case "content_type":
			if s, ok := value.(string); ok {
				query = query.Where("content_type LIKE ?", s+"%")
			}
		case "status":
			query = query.Where("status = ?", value)
		}
	}
	return query
}
