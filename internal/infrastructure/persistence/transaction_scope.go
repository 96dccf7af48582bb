package persistence

import (
	"context"

	appi18n "github.com/shopfront/backend/internal/application/i18n"
	apporder "github.com/shopfront/backend/internal/application/order"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/i18n"
	"github.com/shopfront/backend/internal/domain/order"
	"gorm.io/gorm"
)

// GormTransactionScope implements apporder.TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn in a transaction; any error rolls back every repository call made through repos.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apporder.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) Orders() order.Repository {
	return NewGormOrderRepository(r.tx)
}

// GormI18nTransactionScope implements appi18n.TransactionScope using GORM transactions.
type GormI18nTransactionScope struct {
	db *gorm.DB
}

// NewGormI18nTransactionScope creates a new GormI18nTransactionScope.
func NewGormI18nTransactionScope(db *gorm.DB) *GormI18nTransactionScope {
	return &GormI18nTransactionScope{db: db}
}

// Execute runs fn in a transaction shared by the language and translation repositories.
func (s *GormI18nTransactionScope) Execute(ctx context.Context, fn func(repos appi18n.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormI18nRepositories{tx: tx})
	})
}

type gormI18nRepositories struct {
	tx *gorm.DB
}

func (r *gormI18nRepositories) Languages() i18n.LanguageRepository {
	return NewGormLanguageRepository(r.tx)
}

func (r *gormI18nRepositories) Translations() i18n.TranslationRepository {
	return NewGormTranslationRepository(r.tx)
}
