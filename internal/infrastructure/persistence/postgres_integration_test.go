//go:build integration

package persistence

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	apporder "github.com/shopfront/backend/internal/application/order"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/favorite"
	"github.com/shopfront/backend/internal/domain/i18n"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/migration"
	"github.com/shopfront/backend/migrations"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	pgOnce sync.Once
	pgDSN  string
	pgErr  error
)

// newPostgresDB connects to a postgres container shared by the package. The
// schema comes from the embedded migrations; tests use unique rows instead of
// truncating.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	pgOnce.Do(func() {
		ctx := context.Background()
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("shop_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			pgErr = err
			return
		}
		pgDSN, pgErr = container.ConnectionString(ctx, "sslmode=disable")
		if pgErr != nil {
			return
		}

		db, err := gorm.Open(gormpostgres.Open(pgDSN), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if err != nil {
			pgErr = err
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			pgErr = err
			return
		}
		defer sqlDB.Close()

		m, err := migration.NewFromFS(sqlDB, migrations.FS, zap.NewNop())
		if err != nil {
			pgErr = err
			return
		}
		pgErr = m.Up()
	})
	require.NoError(t, pgErr, "postgres container")

	db, err := gorm.Open(gormpostgres.Open(pgDSN), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, RegisterVersionTracking(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func uniqueSKU(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}

func saveStockedProduct(t *testing.T, db *gorm.DB, stock int) *catalog.Product {
	t.Helper()
	sku := uniqueSKU("PG")
	p, err := catalog.NewProduct(sku, "Integration "+sku, decimal.NewFromInt(25))
	require.NoError(t, err)
	require.NoError(t, p.SetStock(stock))
	require.NoError(t, p.Activate())
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), p))
	return p
}

func TestPostgres_MigrationsSeedDefaultLanguage(t *testing.T) {
	db := newPostgresDB(t)

	lang, err := NewGormLanguageRepository(db).FindDefault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "en", lang.Code)
	assert.True(t, lang.Active)
}

func TestPostgres_AdjustStockNeverOversells(t *testing.T) {
	db := newPostgresDB(t)
	repo := NewGormProductRepository(db)
	p := saveStockedProduct(t, db, 5)

	var sold, refused atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.AdjustStock(context.Background(), p.ID, -1)
			switch {
			case err == nil:
				sold.Add(1)
			case errors.Is(err, shared.ErrInsufficientStock):
				refused.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), sold.Load())
	assert.Equal(t, int32(7), refused.Load())

	reloaded, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.Stock)

	assert.ErrorIs(t, repo.AdjustStock(context.Background(), uuid.New(), -1), shared.ErrNotFound)
}

func TestPostgres_TransactionScopeRollsBackStock(t *testing.T) {
	db := newPostgresDB(t)
	p := saveStockedProduct(t, db, 3)
	scope := NewGormTransactionScope(db)
	boom := errors.New("payment declined")

	err := scope.Execute(context.Background(), func(repos apporder.TransactionalRepositories) error {
		if err := repos.Products().AdjustStock(context.Background(), p.ID, -2); err != nil {
			return err
		}
		o := placeTestOrder(t, nil, p.ID, 25)
		if err := repos.Orders().Save(context.Background(), o); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	reloaded, err := NewGormProductRepository(db).FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Stock)

	var orders int64
	require.NoError(t, db.Table("order_items").Where("product_id = ?", p.ID).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestPostgres_GuestOrderRoundTrip(t *testing.T) {
	db := newPostgresDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := placeTestOrder(t, nil, uuid.New(), 40)
	require.NoError(t, repo.Save(ctx, o))
	require.NoError(t, o.MarkPaid("admin"))
	require.NoError(t, repo.Save(ctx, o))

	loaded, err := repo.FindByNumber(ctx, o.OrderNumber)
	require.NoError(t, err)
	assert.Nil(t, loaded.CustomerID)
	assert.True(t, loaded.Total.Equal(o.Total), "total %s", loaded.Total)
	require.Len(t, loaded.Items, 1)
	assert.NotEmpty(t, loaded.History)
}

func TestPostgres_TranslationUpsertUpdatesExistingKey(t *testing.T) {
	db := newPostgresDB(t)
	repo := NewGormTranslationRepository(db)
	ctx := context.Background()
	key := "banner." + strings.ToLower(uuid.NewString()[:8])

	first, err := i18n.NewTranslation("en", "storefront", key, "Summer sale")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, first))

	second, err := i18n.NewTranslation("en", "storefront", key, "Winter sale")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, second))

	values, err := repo.Map(ctx, "en", "storefront")
	require.NoError(t, err)
	assert.Equal(t, "Winter sale", values[key])

	count, err := repo.Count(ctx, shared.Filter{Search: key})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPostgres_SetDefaultLanguageKeepsSingleDefault(t *testing.T) {
	db := newPostgresDB(t)
	repo := NewGormLanguageRepository(db)
	ctx := context.Background()

	en, err := repo.FindDefault(ctx)
	require.NoError(t, err)

	de, err := i18n.NewLanguage("de", "", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, de))
	t.Cleanup(func() {
		_ = repo.SetDefault(ctx, en.ID)
		_ = repo.Delete(ctx, de.ID)
	})

	require.NoError(t, repo.SetDefault(ctx, de.ID))

	current, err := repo.FindDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, "de", current.Code)

	var defaults int64
	require.NoError(t, db.Model(&i18n.Language{}).Where("is_default").Count(&defaults).Error)
	assert.Equal(t, int64(1), defaults)
}

func TestPostgres_FavoriteCreateIsIdempotent(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	customer, err := identity.NewCustomer(strings.ToLower(uniqueSKU("fan"))+"@shop.test", "Fan", "hunter2hunter2")
	require.NoError(t, err)
	require.NoError(t, NewGormCustomerRepository(db).Save(ctx, customer))
	p := saveStockedProduct(t, db, 1)

	repo := NewGormFavoriteRepository(db)
	for i := 0; i < 2; i++ {
		fav, err := favorite.NewFavorite(customer.ID, p.ID)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, fav))
	}

	n, err := repo.CountByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.Delete(ctx, customer.ID, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, customer.ID, p.ID), shared.ErrNotFound)
}
