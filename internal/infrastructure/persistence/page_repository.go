package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/cms"
	"github.com/shopfront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPageRepository implements cms.PageRepository using GORM
type GormPageRepository struct {
	db *gorm.DB
}

// NewGormPageRepository creates a new GormPageRepository
func NewGormPageRepository(db *gorm.DB) *GormPageRepository {
	return &GormPageRepository{db: db}
}

func (r *GormPageRepository) withBlocks(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Blocks", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// FindByID loads a page with its blocks
func (r *GormPageRepository) FindByID(ctx context.Context, id uuid.UUID) (*cms.Page, error) {
	var page cms.Page
	if err := r.withBlocks(ctx).First(&page, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &page, nil
}

// FindBySlug loads a page by language and slug
func (r *GormPageRepository) FindBySlug(ctx context.Context, languageCode, slug string) (*cms.Page, error) {
	var page cms.Page
	if err := r.withBlocks(ctx).
		Where("language_code = ? AND slug = ?", languageCode, slug).
		First(&page).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &page, nil
}

// FindTranslation loads the translation of baseID into languageCode
func (r *GormPageRepository) FindTranslation(ctx context.Context, baseID uuid.UUID, languageCode string) (*cms.Page, error) {
	var page cms.Page
	if err := r.withBlocks(ctx).
		Where("translation_of = ? AND language_code = ?", baseID, languageCode).
		First(&page).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &page, nil
}

// FindTranslations lists every translation of baseID without blocks
func (r *GormPageRepository) FindTranslations(ctx context.Context, baseID uuid.UUID) ([]cms.Page, error) {
	var pages []cms.Page
	if err := r.db.WithContext(ctx).
		Where("translation_of = ?", baseID).
		Order("language_code ASC").
		Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// FindAll lists pages without blocks
func (r *GormPageRepository) FindAll(ctx context.Context, filter shared.Filter) ([]cms.Page, error) {
	var pages []cms.Page
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&cms.Page{}), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, PageSortFields, "updated_at"))
	if err := query.Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// Count counts pages matching the filter
func (r *GormPageRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&cms.Page{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsBySlug checks whether slug is taken within a language
func (r *GormPageRepository) ExistsBySlug(ctx context.Context, languageCode, slug string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&cms.Page{}).Where("language_code = ? AND slug = ?", languageCode, slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save writes the page, upserts its blocks and deletes blocks that were removed
func (r *GormPageRepository) Save(ctx context.Context, page *cms.Page) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(tx, page); err != nil {
			return err
		}

		keep := make([]uuid.UUID, 0, len(page.Blocks))
		for _, b := range page.Blocks {
			keep = append(keep, b.ID)
		}
		stale := tx.Where("page_id = ?", page.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&cms.Block{}).Error; err != nil {
			return err
		}

		if len(page.Blocks) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&page.Blocks).Error
	})
}

// Delete removes a page, its translations and all their blocks
func (r *GormPageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&cms.Page{}).Where("translation_of = ?", id).Pluck("id", &ids).Error; err != nil {
			return err
		}
		ids = append(ids, id)

		if err := tx.Where("page_id IN ?", ids).Delete(&cms.Block{}).Error; err != nil {
			return err
		}
		if err := tx.Where("translation_of = ?", id).Delete(&cms.Page{}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Delete(&cms.Page{}, "id = ?", id))
	})
}

func (r *GormPageRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR slug ILIKE ?", searchPattern, searchPattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "language_code":
			query = query.Where("language_code = ?", value)
		case "base_only":
			if v, ok := value.(bool); ok && v {
				query = query.Where("translation_of IS NULL")
			}
		}
	}
	return query
}
