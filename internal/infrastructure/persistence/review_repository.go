package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormReviewRepository implements review.Repository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// FindByID finds a review by ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	var rv review.Review
	if err := r.db.WithContext(ctx).First(&rv, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &rv, nil
}

// FindByIDs loads several reviews, silently skipping unknown IDs
func (r *GormReviewRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]review.Review, error) {
	if len(ids) == 0 {
		return []review.Review{}, nil
	}
	var reviews []review.Review
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// FindAll lists reviews matching the filter
func (r *GormReviewRepository) FindAll(ctx context.Context, filter shared.Filter) ([]review.Review, error) {
	var reviews []review.Review
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&review.Review{}), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, ReviewSortFields, "created_at"))
	if err := query.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// Count counts reviews matching the filter
func (r *GormReviewRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&review.Review{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsForCustomer checks whether the customer already reviewed the product
func (r *GormReviewRepository) ExistsForCustomer(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&review.Review{}).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type ratingBucket struct {
	Rating int
	Count  int
}

// RatingDistribution counts approved reviews per star rating
func (r *GormReviewRepository) RatingDistribution(ctx context.Context, productID uuid.UUID) (map[int]int, error) {
	var buckets []ratingBucket
	if err := r.db.WithContext(ctx).Model(&review.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("product_id = ? AND status = ?", productID, review.StatusApproved).
		Group("rating").
		Scan(&buckets).Error; err != nil {
		return nil, err
	}
	dist := make(map[int]int, 5)
	for _, b := range buckets {
		dist[b.Rating] = b.Count
	}
	return dist, nil
}

// Save creates or updates a review
func (r *GormReviewRepository) Save(ctx context.Context, rv *review.Review) error {
	return saveVersioned(r.db.WithContext(ctx), rv)
}

// Delete removes a review
func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.WithContext(ctx).Delete(&review.Review{}, "id = ?", id))
}

func (r *GormReviewRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR body ILIKE ? OR author_name ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "rating":
			query = query.Where("rating = ?", value)
		case "verified":
			query = query.Where("verified_purchase = ?", value)
		}
	}
	return query
}
