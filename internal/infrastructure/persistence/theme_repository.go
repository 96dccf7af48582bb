package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/theme"
	"gorm.io/gorm"
)

// GormThemeRepository implements theme.Repository using GORM
type GormThemeRepository struct {
	db *gorm.DB
}

// NewGormThemeRepository creates a new GormThemeRepository
func NewGormThemeRepository(db *gorm.DB) *GormThemeRepository {
	return &GormThemeRepository{db: db}
}

// FindByID finds a theme by ID
func (r *GormThemeRepository) FindByID(ctx context.Context, id uuid.UUID) (*theme.Theme, error) {
	var t theme.Theme
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

// FindActive returns the active theme
func (r *GormThemeRepository) FindActive(ctx context.Context) (*theme.Theme, error) {
	var t theme.Theme
	if err := r.db.WithContext(ctx).Where("active = ?", true).First(&t).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

// FindAll lists themes, active first
func (r *GormThemeRepository) FindAll(ctx context.Context) ([]theme.Theme, error) {
	var themes []theme.Theme
	if err := r.db.WithContext(ctx).Order("active DESC, name ASC").Find(&themes).Error; err != nil {
		return nil, err
	}
	return themes, nil
}

// ExistsBySlug checks whether slug is taken
func (r *GormThemeRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&theme.Theme{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a theme
func (r *GormThemeRepository) Save(ctx context.Context, t *theme.Theme) error {
	return saveVersioned(r.db.WithContext(ctx), t)
}

// Activate makes id the only active theme
func (r *GormThemeRepository) Activate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&theme.Theme{}).
			Where("active = ? AND id <> ?", true, id).
			Updates(map[string]interface{}{"active": false, "version": gorm.Expr("version + 1"), "updated_at": now}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Model(&theme.Theme{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"active": true, "version": gorm.Expr("version + 1"), "updated_at": now}))
	})
}

// Delete removes a theme
func (r *GormThemeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.WithContext(ctx).Delete(&theme.Theme{}, "id = ?", id))
}
