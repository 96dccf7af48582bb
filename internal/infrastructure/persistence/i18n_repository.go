package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/i18n"
	"github.com/shopfront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLanguageRepository implements i18n.LanguageRepository using GORM
type GormLanguageRepository struct {
	db *gorm.DB
}

// NewGormLanguageRepository creates a new GormLanguageRepository
func NewGormLanguageRepository(db *gorm.DB) *GormLanguageRepository {
	return &GormLanguageRepository{db: db}
}

// FindByID finds a language by ID
func (r *GormLanguageRepository) FindByID(ctx context.Context, id uuid.UUID) (*i18n.Language, error) {
	var lang i18n.Language
	if err := r.db.WithContext(ctx).First(&lang, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &lang, nil
}

// FindByCode finds a language by its code
func (r *GormLanguageRepository) FindByCode(ctx context.Context, code string) (*i18n.Language, error) {
	var lang i18n.Language
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&lang).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &lang, nil
}

// FindDefault returns the default language
func (r *GormLanguageRepository) FindDefault(ctx context.Context) (*i18n.Language, error) {
	var lang i18n.Language
	if err := r.db.WithContext(ctx).Where("is_default = ?", true).First(&lang).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &lang, nil
}

// FindAll lists languages ordered by sort order then code
func (r *GormLanguageRepository) FindAll(ctx context.Context, activeOnly bool) ([]i18n.Language, error) {
	var langs []i18n.Language
	query := r.db.WithContext(ctx).Model(&i18n.Language{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Order("sort_order ASC, code ASC").Find(&langs).Error; err != nil {
		return nil, err
	}
	return langs, nil
}

// ExistsByCode checks whether a language code is taken
func (r *GormLanguageRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&i18n.Language{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a language
func (r *GormLanguageRepository) Save(ctx context.Context, lang *i18n.Language) error {
	return saveVersioned(r.db.WithContext(ctx), lang)
}

// SetDefault moves the default flag to id
func (r *GormLanguageRepository) SetDefault(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&i18n.Language{}).
			Where("is_default = ? AND id <> ?", true, id).
			Updates(map[string]interface{}{"is_default": false, "version": gorm.Expr("version + 1"), "updated_at": now}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Model(&i18n.Language{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"is_default": true, "active": true, "version": gorm.Expr("version + 1"), "updated_at": now}))
	})
}

// Delete removes a language
func (r *GormLanguageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.WithContext(ctx).Delete(&i18n.Language{}, "id = ?", id))
}

// GormTranslationRepository implements i18n.TranslationRepository using GORM
type GormTranslationRepository struct {
	db *gorm.DB
}

// NewGormTranslationRepository creates a new GormTranslationRepository
func NewGormTranslationRepository(db *gorm.DB) *GormTranslationRepository {
	return &GormTranslationRepository{db: db}
}

// FindAll lists translations matching the filter
func (r *GormTranslationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]i18n.Translation, error) {
	var items []i18n.Translation
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&i18n.Translation{}), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, TranslationSortFields, "key"))
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Count counts translations matching the filter
func (r *GormTranslationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&i18n.Translation{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByKey finds a single translation
func (r *GormTranslationRepository) FindByKey(ctx context.Context, languageCode, namespace, key string) (*i18n.Translation, error) {
	var t i18n.Translation
	if err := r.db.WithContext(ctx).
		Where("language_code = ? AND namespace = ? AND key = ?", languageCode, namespace, key).
		First(&t).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

// Map returns key -> value for a language and namespace. An empty namespace
// returns every namespace with keys prefixed by "namespace.".
func (r *GormTranslationRepository) Map(ctx context.Context, languageCode, namespace string) (map[string]string, error) {
	var rows []i18n.Translation
	query := r.db.WithContext(ctx).Select("namespace", "key", "value").Where("language_code = ?", languageCode)
	if namespace != "" {
		query = query.Where("namespace = ?", namespace)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, t := range rows {
		if namespace == "" {
			out[t.Namespace+"."+t.Key] = t.Value
			continue
		}
		out[t.Key] = t.Value
	}
	return out, nil
}

// Namespaces lists distinct namespaces
func (r *GormTranslationRepository) Namespaces(ctx context.Context) ([]string, error) {
	var namespaces []string
	if err := r.db.WithContext(ctx).Model(&i18n.Translation{}).
		Distinct().
		Order("namespace").
		Pluck("namespace", &namespaces).Error; err != nil {
		return nil, err
	}
	return namespaces, nil
}

// Upsert inserts translations or updates the value of existing keys
func (r *GormTranslationRepository) Upsert(ctx context.Context, translations ...*i18n.Translation) error {
	if len(translations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "language_code"}, {Name: "namespace"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).CreateInBatches(translations, 500).Error
}

// Delete removes a translation
func (r *GormTranslationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.WithContext(ctx).Delete(&i18n.Translation{}, "id = ?", id))
}

// DeleteByLanguage removes every translation of a language
func (r *GormTranslationRepository) DeleteByLanguage(ctx context.Context, languageCode string) error {
	return r.db.WithContext(ctx).Where("language_code = ?", languageCode).Delete(&i18n.Translation{}).Error
}

func (r *GormTranslationRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("key ILIKE ? OR value ILIKE ?", searchPattern, searchPattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "language":
			query = query.Where("language_code = ?", value)
		case "namespace":
			query = query.Where("namespace = ?", value)
		}
	}
	return query
}
