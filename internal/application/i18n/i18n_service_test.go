package i18n

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/i18n"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLanguageRepository struct {
	mock.Mock
}

func (m *MockLanguageRepository) FindByID(ctx context.Context, id uuid.UUID) (*i18n.Language, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*i18n.Language), args.Error(1)
}

func (m *MockLanguageRepository) FindByCode(ctx context.Context, code string) (*i18n.Language, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*i18n.Language), args.Error(1)
}

func (m *MockLanguageRepository) FindDefault(ctx context.Context) (*i18n.Language, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*i18n.Language), args.Error(1)
}

func (m *MockLanguageRepository) FindAll(ctx context.Context, activeOnly bool) ([]i18n.Language, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]i18n.Language), args.Error(1)
}

func (m *MockLanguageRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockLanguageRepository) Save(ctx context.Context, lang *i18n.Language) error {
	return m.Called(ctx, lang).Error(0)
}

func (m *MockLanguageRepository) SetDefault(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLanguageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockTranslationRepository struct {
	mock.Mock
}

func (m *MockTranslationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]i18n.Translation, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]i18n.Translation), args.Error(1)
}

func (m *MockTranslationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTranslationRepository) FindByKey(ctx context.Context, languageCode, namespace, key string) (*i18n.Translation, error) {
	args := m.Called(ctx, languageCode, namespace, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*i18n.Translation), args.Error(1)
}

func (m *MockTranslationRepository) Map(ctx context.Context, languageCode, namespace string) (map[string]string, error) {
	args := m.Called(ctx, languageCode, namespace)
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockTranslationRepository) Namespaces(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTranslationRepository) Upsert(ctx context.Context, translations ...*i18n.Translation) error {
	return m.Called(ctx, translations).Error(0)
}

func (m *MockTranslationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTranslationRepository) DeleteByLanguage(ctx context.Context, languageCode string) error {
	return m.Called(ctx, languageCode).Error(0)
}

func newLanguage(t *testing.T, code string, isDefault bool) *i18n.Language {
	t.Helper()
	l, err := i18n.NewLanguage(code, "", "")
	require.NoError(t, err)
	if isDefault {
		require.NoError(t, l.MarkDefault())
	}
	return l
}

func newTestCache(t *testing.T) *cache.MemoryCache {
	t.Helper()
	c := cache.NewMemoryCache(time.Hour)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLanguageService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("first language becomes default", func(t *testing.T) {
		langs := new(MockLanguageRepository)
		svc := NewLanguageService(langs, new(MockTranslationRepository), nil, nil, nil)
		langs.On("ExistsByCode", ctx, "pt-BR").Return(false, nil)
		langs.On("FindDefault", ctx).Return(nil, shared.ErrNotFound)
		langs.On("Save", ctx, mock.AnythingOfType("*i18n.Language")).Return(nil)
		langs.On("SetDefault", ctx, mock.AnythingOfType("uuid.UUID")).Return(nil)

		resp, err := svc.Create(ctx, CreateLanguageRequest{Code: "pt-br"})
		require.NoError(t, err)
		assert.Equal(t, "pt-BR", resp.Code)
		assert.True(t, resp.IsDefault)
		assert.Equal(t, "ltr", resp.Direction)
	})

	t.Run("rtl derived and not default", func(t *testing.T) {
		langs := new(MockLanguageRepository)
		svc := NewLanguageService(langs, new(MockTranslationRepository), nil, nil, nil)
		langs.On("ExistsByCode", ctx, "ar").Return(false, nil)
		langs.On("FindDefault", ctx).Return(newLanguage(t, "en", true), nil)
		langs.On("Save", ctx, mock.AnythingOfType("*i18n.Language")).Return(nil)

		resp, err := svc.Create(ctx, CreateLanguageRequest{Code: "ar", SortOrder: 3})
		require.NoError(t, err)
		assert.False(t, resp.IsDefault)
		assert.Equal(t, "rtl", resp.Direction)
		assert.Equal(t, 3, resp.SortOrder)
		langs.AssertNotCalled(t, "SetDefault", mock.Anything, mock.Anything)
	})

	t.Run("duplicate", func(t *testing.T) {
		langs := new(MockLanguageRepository)
		svc := NewLanguageService(langs, new(MockTranslationRepository), nil, nil, nil)
		langs.On("ExistsByCode", ctx, "en").Return(true, nil)

		_, err := svc.Create(ctx, CreateLanguageRequest{Code: "EN"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("invalid code", func(t *testing.T) {
		svc := NewLanguageService(new(MockLanguageRepository), new(MockTranslationRepository), nil, nil, nil)
		_, err := svc.Create(ctx, CreateLanguageRequest{Code: "not a tag!"})
		require.Error(t, err)
	})
}

func TestLanguageService_DefaultRules(t *testing.T) {
	ctx := context.Background()
	langs := new(MockLanguageRepository)
	translations := new(MockTranslationRepository)
	c := newTestCache(t)
	svc := NewLanguageService(langs, translations, nil, c, nil)

	en := newLanguage(t, "en", true)
	de := newLanguage(t, "de", false)
	langs.On("FindByCode", ctx, "en").Return(en, nil)
	langs.On("FindByCode", ctx, "de").Return(de, nil)

	inactive := false
	_, err := svc.Update(ctx, "en", UpdateLanguageRequest{Active: &inactive})
	assertCode(t, err, "DEFAULT_LANGUAGE")

	err = svc.Delete(ctx, "en")
	assertCode(t, err, "DEFAULT_LANGUAGE")
	translations.AssertNotCalled(t, "DeleteByLanguage", mock.Anything, mock.Anything)

	require.NoError(t, c.Set(ctx, "i18n:bundle:de:common", map[string]string{"a": "b"}, 0))
	langs.On("SetDefault", ctx, de.ID).Return(nil)
	resp, err := svc.SetDefault(ctx, "de")
	require.NoError(t, err)
	assert.True(t, resp.IsDefault)
	assert.Equal(t, 0, c.Len())
}

func TestLanguageService_Negotiate(t *testing.T) {
	ctx := context.Background()
	langs := new(MockLanguageRepository)
	svc := NewLanguageService(langs, new(MockTranslationRepository), nil, nil, nil)
	langs.On("FindAll", ctx, true).Return([]i18n.Language{
		*newLanguage(t, "fr", false),
		*newLanguage(t, "en", true),
		*newLanguage(t, "pt-BR", false),
	}, nil)

	tests := []struct {
		name           string
		explicit       string
		acceptLanguage string
		want           string
	}{
		{"explicit wins", "DE", "fr", "de"},
		{"no header uses default", "", "", "en"},
		{"exact match", "", "fr-FR,fr;q=0.9,en;q=0.5", "fr"},
		{"regional match", "", "pt-BR,pt;q=0.8", "pt-BR"},
		{"unsupported falls back", "", "ja-JP", "en"},
		{"malformed header falls back", "", ";;;", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Negotiate(ctx, tt.explicit, tt.acceptLanguage)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLanguageService_Negotiate_NoLanguages(t *testing.T) {
	ctx := context.Background()
	langs := new(MockLanguageRepository)
	svc := NewLanguageService(langs, new(MockTranslationRepository), nil, nil, nil)
	langs.On("FindAll", ctx, true).Return([]i18n.Language{}, nil)

	_, err := svc.Negotiate(ctx, "", "en")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLanguageService_Delete(t *testing.T) {
	ctx := context.Background()
	langs := new(MockLanguageRepository)
	translations := new(MockTranslationRepository)
	c := newTestCache(t)
	svc := NewLanguageService(langs, translations, nil, c, nil)

	fr := newLanguage(t, "fr", false)
	langs.On("FindByCode", ctx, "fr").Return(fr, nil)
	translations.On("DeleteByLanguage", ctx, "fr").Return(nil)
	langs.On("Delete", ctx, fr.ID).Return(nil)

	require.NoError(t, c.Set(ctx, "i18n:bundle:fr:common", map[string]string{}, 0))
	require.NoError(t, c.Set(ctx, "i18n:bundle:en:common", map[string]string{}, 0))

	require.NoError(t, svc.Delete(ctx, "fr"))
	assert.Equal(t, 1, c.Len())
	translations.AssertExpectations(t)
}

func setupTranslations(t *testing.T) (*TranslationService, *MockTranslationRepository, *MockLanguageRepository, *cache.MemoryCache) {
	t.Helper()
	repo := new(MockTranslationRepository)
	langs := new(MockLanguageRepository)
	c := newTestCache(t)
	return NewTranslationService(repo, langs, c, time.Hour, nil), repo, langs, c
}

func TestTranslationService_Bundle(t *testing.T) {
	ctx := context.Background()
	svc, repo, langs, _ := setupTranslations(t)

	en := newLanguage(t, "en", true)
	de := newLanguage(t, "de", false)
	langs.On("FindByCode", ctx, "de").Return(de, nil)
	langs.On("FindDefault", ctx).Return(en, nil)
	repo.On("Map", ctx, "en", "common").Return(map[string]string{
		"cart.title": "Your cart",
		"cart.empty": "Nothing here",
		"home":       "Home",
	}, nil).Once()
	repo.On("Map", ctx, "de", "common").Return(map[string]string{
		"cart.title": "Warenkorb",
	}, nil).Once()

	bundle, err := svc.Bundle(ctx, "de", "")
	require.NoError(t, err)
	cart := bundle["cart"].(map[string]interface{})
	assert.Equal(t, "Warenkorb", cart["title"])
	assert.Equal(t, "Nothing here", cart["empty"])
	assert.Equal(t, "Home", bundle["home"])

	// served from cache
	again, err := svc.Bundle(ctx, "de", "common")
	require.NoError(t, err)
	assert.Equal(t, bundle, again)
	repo.AssertNumberOfCalls(t, "Map", 2)
}

func TestTranslationService_UpsertInvalidatesBundle(t *testing.T) {
	ctx := context.Background()
	svc, repo, langs, c := setupTranslations(t)

	en := newLanguage(t, "en", true)
	de := newLanguage(t, "de", false)
	langs.On("FindByCode", ctx, "de").Return(de, nil)
	langs.On("FindDefault", ctx).Return(en, nil)
	repo.On("Upsert", ctx, mock.Anything).Return(nil)

	require.NoError(t, c.Set(ctx, "i18n:bundle:de:common", map[string]string{}, 0))
	require.NoError(t, c.Set(ctx, "i18n:bundle:de:checkout", map[string]string{}, 0))

	resp, err := svc.Upsert(ctx, UpsertTranslationRequest{LanguageCode: "de", Key: "cart.title", Value: "Warenkorb"})
	require.NoError(t, err)
	assert.Equal(t, "common", resp.Namespace)
	assert.Equal(t, 1, c.Len())

	_, err = svc.Upsert(ctx, UpsertTranslationRequest{LanguageCode: "de", Key: "bad key!", Value: "x"})
	assertCode(t, err, "INVALID_KEY")
}

func TestTranslationService_Import(t *testing.T) {
	ctx := context.Background()
	svc, repo, langs, _ := setupTranslations(t)

	en := newLanguage(t, "en", true)
	langs.On("FindByCode", ctx, "en").Return(en, nil)
	langs.On("FindDefault", ctx).Return(en, nil)

	var written []*i18n.Translation
	repo.On("Upsert", ctx, mock.Anything).Run(func(args mock.Arguments) {
		written = args.Get(1).([]*i18n.Translation)
	}).Return(nil)

	result, err := svc.Import(ctx, ImportRequest{
		LanguageCode: "en",
		Namespace:    "checkout",
		Data: map[string]interface{}{
			"button": map[string]interface{}{"pay": "Pay now"},
			"title":  "Checkout",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, written, 2)
	assert.Equal(t, "button.pay", written[0].Key)
	assert.Equal(t, "checkout", written[0].Namespace)
	assert.Equal(t, "title", written[1].Key)
}

func TestTranslationService_Missing(t *testing.T) {
	ctx := context.Background()
	svc, repo, langs, _ := setupTranslations(t)

	en := newLanguage(t, "en", true)
	de := newLanguage(t, "de", false)
	langs.On("FindByCode", ctx, "de").Return(de, nil)
	langs.On("FindByCode", ctx, "en").Return(en, nil)
	langs.On("FindDefault", ctx).Return(en, nil)
	repo.On("Namespaces", ctx).Return([]string{"checkout", "common"}, nil)
	repo.On("Map", ctx, "en", "common").Return(map[string]string{"home": "Home", "menu": "Menu"}, nil)
	repo.On("Map", ctx, "de", "common").Return(map[string]string{"home": "Startseite"}, nil)
	repo.On("Map", ctx, "en", "checkout").Return(map[string]string{"pay": "Pay"}, nil)
	repo.On("Map", ctx, "de", "checkout").Return(map[string]string{}, nil)

	missing, err := svc.Missing(ctx, "de", "")
	require.NoError(t, err)
	assert.Equal(t, []MissingTranslation{
		{Namespace: "checkout", Key: "pay", DefaultValue: "Pay"},
		{Namespace: "common", Key: "menu", DefaultValue: "Menu"},
	}, missing)

	none, err := svc.Missing(ctx, "en", "")
	require.NoError(t, err)
	assert.Empty(t, none)

	page, err := svc.List(ctx, TranslationListFilter{Language: "de", MissingOnly: true, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].Missing)
	assert.Equal(t, "pay", page.Items[0].Key)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}
