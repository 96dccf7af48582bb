package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/apikey"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveVersioned_StaleOrderCancelConflicts(t *testing.T) {
	repo := newOrderTestDB(t)
	ctx := context.Background()

	o := placeTestOrder(t, nil, uuid.New(), 20)
	require.NoError(t, repo.Save(ctx, o))

	first, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)

	require.NoError(t, first.Cancel("changed mind", "customer", true))
	require.NoError(t, repo.Save(ctx, first))

	require.NoError(t, second.Cancel("duplicate click", "customer", true))
	assert.ErrorIs(t, repo.Save(ctx, second), shared.ErrConcurrencyConflict)

	loaded, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, loaded.Status)
	assert.Equal(t, first.Version, loaded.Version)

	cancelled := 0
	for _, h := range loaded.History {
		if h.ToStatus == order.StatusCancelled {
			cancelled++
		}
	}
	assert.Equal(t, 1, cancelled)
}

func TestSaveVersioned_SequentialSavesAdvanceVersion(t *testing.T) {
	repo := NewGormProductRepository(newSQLiteDB(t, &catalog.Product{}))
	ctx := context.Background()

	p, err := catalog.NewProduct("MUG-1", "Mug", decimal.NewFromInt(9))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))
	assert.Equal(t, p.Version, p.StoredVersion())

	require.NoError(t, p.SetStock(4))
	require.NoError(t, repo.Save(ctx, p))
	require.NoError(t, p.SetStock(6))
	require.NoError(t, repo.Save(ctx, p))

	loaded, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, loaded.Stock)
	assert.Equal(t, p.Version, loaded.Version)
	assert.Equal(t, loaded.Version, loaded.StoredVersion())
}

func TestSaveVersioned_StockChangeInvalidatesLoadedProduct(t *testing.T) {
	repo := NewGormProductRepository(newSQLiteDB(t, &catalog.Product{}))
	ctx := context.Background()

	p, err := catalog.NewProduct("MUG-2", "Mug", decimal.NewFromInt(9))
	require.NoError(t, err)
	require.NoError(t, p.SetStock(5))
	require.NoError(t, repo.Save(ctx, p))

	stale, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, repo.AdjustStock(ctx, p.ID, -2))

	require.NoError(t, stale.Update("Big mug", stale.Description, stale.Category))
	assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)

	loaded, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Stock)
	assert.Equal(t, "Mug", loaded.Name)
}

func TestSaveVersioned_DeletedRowIsNotFound(t *testing.T) {
	repo := NewGormProductRepository(newSQLiteDB(t, &catalog.Product{}))
	ctx := context.Background()

	p, err := catalog.NewProduct("MUG-3", "Mug", decimal.NewFromInt(9))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))
	require.NoError(t, repo.Delete(ctx, p.ID))

	require.NoError(t, p.SetStock(1))
	assert.ErrorIs(t, repo.Save(ctx, p), shared.ErrNotFound)
}

func TestGormAPIKeyRepository_MarkUsedKeepsRotatedSecret(t *testing.T) {
	repo := NewGormAPIKeyRepository(newSQLiteDB(t, &apikey.APIKey{}))
	ctx := context.Background()
	enc, err := crypto.NewAESGCM("0123456789abcdef0123456789abcdef", crypto.WithIterations(1000))
	require.NoError(t, err)

	key, err := apikey.NewAPIKey(enc, "Stripe live", apikey.ProviderStripe, apikey.EnvironmentLive, "sk_live_original_1234", "", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, key))

	// a lookup for an integration holds the key while an admin rotates it
	inUse, err := repo.FindActive(ctx, apikey.ProviderStripe, apikey.EnvironmentLive)
	require.NoError(t, err)

	admin, err := repo.FindByID(ctx, key.ID)
	require.NoError(t, err)
	require.NoError(t, admin.Rotate(enc, "sk_live_rotated_5678"))
	require.NoError(t, repo.Save(ctx, admin))

	inUse.MarkUsed()
	require.NoError(t, repo.MarkUsed(ctx, inUse.ID, *inUse.LastUsedAt))
	assert.ErrorIs(t, repo.Save(ctx, inUse), shared.ErrConcurrencyConflict)

	loaded, err := repo.FindByID(ctx, key.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.EncryptedValue, loaded.EncryptedValue)
	assert.Equal(t, admin.Version, loaded.Version)
	require.NotNil(t, loaded.LastUsedAt)
	assert.WithinDuration(t, time.Now(), *loaded.LastUsedAt, time.Minute)

	revealed, err := loaded.Reveal(enc)
	require.NoError(t, err)
	assert.Equal(t, "sk_live_rotated_5678", revealed)

	assert.ErrorIs(t, repo.MarkUsed(ctx, uuid.New(), time.Now()), shared.ErrNotFound)
}
