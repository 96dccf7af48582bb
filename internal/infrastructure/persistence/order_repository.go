package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, sku ASC") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
}

// FindByID loads an order with its items and history
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.withDetails(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByNumber loads an order by its public number
func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	var o order.Order
	if err := r.withDetails(ctx).Where("order_number = ?", number).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAll lists orders with their items. History is loaded only by FindByID.
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&order.Order{}), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, OrderSortFields, "created_at")).
		Preload("Items")

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&order.Order{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save writes the order and upserts its items and history rows
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(tx, o); err != nil {
			return err
		}
		if len(o.Items) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&o.Items).Error; err != nil {
				return err
			}
		}
		if len(o.History) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&o.History).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

type statusCount struct {
	Status order.Status
	Count  int64
}

// Stats aggregates counts per status and revenue from paid orders
func (r *GormOrderRepository) Stats(ctx context.Context, from, to *time.Time) (*order.Stats, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&order.Order{})
		if from != nil {
			q = q.Where("created_at >= ?", *from)
		}
		if to != nil {
			q = q.Where("created_at < ?", *to)
		}
		return q
	}

	var counts []statusCount
	if err := scoped().Select("status, COUNT(*) AS count").Group("status").Scan(&counts).Error; err != nil {
		return nil, err
	}

	stats := &order.Stats{
		CountByStatus: make(map[order.Status]int64, len(order.AllStatuses)),
		PaidRevenue:   decimal.Zero,
		AverageOrder:  decimal.Zero,
	}
	for _, s := range order.AllStatuses {
		stats.CountByStatus[s] = 0
	}
	for _, c := range counts {
		stats.CountByStatus[c.Status] = c.Count
		stats.TotalOrders += c.Count
	}

	var revenue struct {
		Total decimal.Decimal
		Paid  int64
	}
	if err := scoped().
		Select("COALESCE(SUM(total), 0) AS total, COUNT(*) AS paid").
		Where("payment_status = ?", order.PaymentPaid).
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	stats.PaidRevenue = revenue.Total.Round(2)
	if revenue.Paid > 0 {
		stats.AverageOrder = revenue.Total.Div(decimal.NewFromInt(revenue.Paid)).Round(2)
	}
	return stats, nil
}

// HasDeliveredProduct reports whether the customer received the product in a delivered order
func (r *GormOrderRepository) HasDeliveredProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&order.Order{}).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("orders.customer_id = ? AND orders.status = ? AND order_items.product_id = ?",
			customerID, order.StatusDelivered, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR customer_email ILIKE ? OR customer_name ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "from":
			query = query.Where("created_at >= ?", value)
		case "to":
			query = query.Where("created_at < ?", value)
		}
	}
	return query
}
