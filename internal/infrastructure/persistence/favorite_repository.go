package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/favorite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFavoriteRepository implements favorite.Repository using GORM
type GormFavoriteRepository struct {
	db *gorm.DB
}

// NewGormFavoriteRepository creates a new GormFavoriteRepository
func NewGormFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

// Find returns the favorite for a customer and product
func (r *GormFavoriteRepository) Find(ctx context.Context, customerID, productID uuid.UUID) (*favorite.Favorite, error) {
	var fav favorite.Favorite
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		First(&fav).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &fav, nil
}

// ListByCustomer returns a page of favorites, newest first, and the total
func (r *GormFavoriteRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, page, pageSize int) ([]favorite.Favorite, int64, error) {
	total, err := r.CountByCustomer(ctx, customerID)
	if err != nil {
		return nil, 0, err
	}

	var favs []favorite.Favorite
	query := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("created_at DESC")
	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	if err := query.Find(&favs).Error; err != nil {
		return nil, 0, err
	}
	return favs, total, nil
}

// CountByCustomer counts a customer's favorites
func (r *GormFavoriteRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&favorite.Favorite{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ContainsAny reports which of productIDs the customer has saved
func (r *GormFavoriteRepository) ContainsAny(ctx context.Context, customerID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}
	var saved []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&favorite.Favorite{}).
		Where("customer_id = ? AND product_id IN ?", customerID, productIDs).
		Pluck("product_id", &saved).Error; err != nil {
		return nil, err
	}
	for _, id := range saved {
		result[id] = true
	}
	return result, nil
}

// Create inserts the favorite, ignoring an existing pair
func (r *GormFavoriteRepository) Create(ctx context.Context, fav *favorite.Favorite) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(fav).Error
}

// Delete removes a favorite
func (r *GormFavoriteRepository) Delete(ctx context.Context, customerID, productID uuid.UUID) error {
	return requireAffected(r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Delete(&favorite.Favorite{}))
}
