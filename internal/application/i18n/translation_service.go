package i18n

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/i18n"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// TranslationService manages UI strings and serves storefront bundles
type TranslationService struct {
	repo      i18n.TranslationRepository
	languages i18n.LanguageRepository
	cache     cache.Cache
	bundleTTL time.Duration
	logger    *zap.Logger
}

// NewTranslationService creates a new translation service
func NewTranslationService(repo i18n.TranslationRepository, languages i18n.LanguageRepository, c cache.Cache, bundleTTL time.Duration, logger *zap.Logger) *TranslationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.Noop{}
	}
	if bundleTTL <= 0 {
		bundleTTL = time.Hour
	}
	return &TranslationService{repo: repo, languages: languages, cache: c, bundleTTL: bundleTTL, logger: logger}
}

// List returns a page of translations. With MissingOnly set it lists the
// keys of the default language that the requested language lacks.
func (s *TranslationService) List(ctx context.Context, filter TranslationListFilter) (*shared.Paginated[TranslationResponse], error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   strings.TrimSpace(filter.Search),
		OrderBy:  "key",
		OrderDir: "asc",
	}.Normalize(500)

	if filter.MissingOnly {
		return s.listMissing(ctx, filter, domainFilter)
	}

	if filter.Language != "" {
		code, err := i18n.CanonicalCode(filter.Language)
		if err != nil {
			return nil, err
		}
		domainFilter.Filters["language"] = code
	}
	if filter.Namespace != "" {
		domainFilter.Filters["namespace"] = filter.Namespace
	}

	rows, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]TranslationResponse, len(rows))
	for i := range rows {
		items[i] = ToTranslationResponse(&rows[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

func (s *TranslationService) listMissing(ctx context.Context, filter TranslationListFilter, domainFilter shared.Filter) (*shared.Paginated[TranslationResponse], error) {
	if filter.Language == "" {
		return nil, shared.NewDomainError("INVALID_FILTER", "Missing translations require a language")
	}
	missing, err := s.Missing(ctx, filter.Language, filter.Namespace)
	if err != nil {
		return nil, err
	}
	lang, _ := i18n.CanonicalCode(filter.Language)

	search := strings.ToLower(domainFilter.Search)
	all := make([]TranslationResponse, 0, len(missing))
	for _, m := range missing {
		if search != "" && !strings.Contains(strings.ToLower(m.Key), search) && !strings.Contains(strings.ToLower(m.DefaultValue), search) {
			continue
		}
		all = append(all, TranslationResponse{
			LanguageCode: lang,
			Namespace:    m.Namespace,
			Key:          m.Key,
			Missing:      true,
			DefaultValue: m.DefaultValue,
		})
	}

	start := domainFilter.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + domainFilter.PageSize
	if end > len(all) {
		end = len(all)
	}
	page := shared.NewPaginated(all[start:end], int64(len(all)), domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Upsert creates or replaces one translation
func (s *TranslationService) Upsert(ctx context.Context, req UpsertTranslationRequest) (*TranslationResponse, error) {
	lang, err := s.language(ctx, req.LanguageCode)
	if err != nil {
		return nil, err
	}
	t, err := i18n.NewTranslation(lang.Code, req.Namespace, strings.TrimSpace(req.Key), req.Value)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate(ctx, lang.Code, t.Namespace)

	response := ToTranslationResponse(t)
	return &response, nil
}

// BulkUpsert creates or replaces a set of keys in one language and namespace
func (s *TranslationService) BulkUpsert(ctx context.Context, req BulkUpsertRequest) (*ImportResult, error) {
	return s.write(ctx, req.LanguageCode, req.Namespace, req.Translations)
}

// Import loads a flat or nested key/value document
func (s *TranslationService) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	return s.write(ctx, req.LanguageCode, req.Namespace, i18n.Flatten(req.Data))
}

// Export returns the flat key/value map of one language and namespace
func (s *TranslationService) Export(ctx context.Context, languageCode, namespace string) (map[string]string, error) {
	lang, err := s.language(ctx, languageCode)
	if err != nil {
		return nil, err
	}
	if namespace == "" {
		namespace = i18n.DefaultNamespace
	}
	return s.repo.Map(ctx, lang.Code, namespace)
}

// Delete removes a translation by id
func (s *TranslationService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	// the row is gone so its language is unknown here
	invalidateBundles(ctx, s.cache, s.logger, "")
	return nil
}

// Bundle returns the nested translation object for the storefront. Keys the
// language lacks fall back to the default language.
func (s *TranslationService) Bundle(ctx context.Context, languageCode, namespace string) (map[string]interface{}, error) {
	lang, err := s.language(ctx, languageCode)
	if err != nil {
		return nil, err
	}
	if namespace == "" {
		namespace = i18n.DefaultNamespace
	}
	if err := i18n.ValidateNamespace(namespace); err != nil {
		return nil, err
	}

	key := bundlePrefix + lang.Code + ":" + namespace
	return cache.GetOrLoad(ctx, s.cache, key, s.bundleTTL, func(ctx context.Context) (map[string]interface{}, error) {
		merged := map[string]string{}
		if !lang.IsDefault {
			def, err := s.languages.FindDefault(ctx)
			if err != nil && !shared.IsNotFound(err) {
				return nil, err
			}
			if def != nil {
				base, err := s.repo.Map(ctx, def.Code, namespace)
				if err != nil {
					return nil, err
				}
				for k, v := range base {
					merged[k] = v
				}
			}
		}
		own, err := s.repo.Map(ctx, lang.Code, namespace)
		if err != nil {
			return nil, err
		}
		for k, v := range own {
			merged[k] = v
		}
		return i18n.Nest(merged), nil
	})
}

// Missing lists keys present in the default language but absent in
// languageCode. An empty namespace checks every namespace.
func (s *TranslationService) Missing(ctx context.Context, languageCode, namespace string) ([]MissingTranslation, error) {
	lang, err := s.language(ctx, languageCode)
	if err != nil {
		return nil, err
	}
	def, err := s.languages.FindDefault(ctx)
	if err != nil {
		if shared.IsNotFound(err) {
			return []MissingTranslation{}, nil
		}
		return nil, err
	}
	if def.Code == lang.Code {
		return []MissingTranslation{}, nil
	}

	namespaces := []string{namespace}
	if namespace == "" {
		if namespaces, err = s.repo.Namespaces(ctx); err != nil {
			return nil, err
		}
	}

	missing := []MissingTranslation{}
	for _, ns := range namespaces {
		base, err := s.repo.Map(ctx, def.Code, ns)
		if err != nil {
			return nil, err
		}
		own, err := s.repo.Map(ctx, lang.Code, ns)
		if err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(base))
		for k := range base {
			if _, ok := own[k]; !ok {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			missing = append(missing, MissingTranslation{Namespace: ns, Key: k, DefaultValue: base[k]})
		}
	}
	return missing, nil
}

func (s *TranslationService) write(ctx context.Context, languageCode, namespace string, values map[string]string) (*ImportResult, error) {
	lang, err := s.language(ctx, languageCode)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return &ImportResult{}, nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]*i18n.Translation, 0, len(keys))
	for _, k := range keys {
		t, err := i18n.NewTranslation(lang.Code, namespace, strings.TrimSpace(k), values[k])
		if err != nil {
			return nil, err
		}
		rows = append(rows, t)
	}
	if err := s.repo.Upsert(ctx, rows...); err != nil {
		return nil, err
	}
	s.invalidate(ctx, lang.Code, rows[0].Namespace)
	s.logger.Info("Translations written",
		zap.String("language", lang.Code),
		zap.String("namespace", rows[0].Namespace),
		zap.Int("count", len(rows)))
	return &ImportResult{Imported: len(rows)}, nil
}

func (s *TranslationService) language(ctx context.Context, code string) (*i18n.Language, error) {
	canonical, err := i18n.CanonicalCode(code)
	if err != nil {
		return nil, err
	}
	return s.languages.FindByCode(ctx, canonical)
}

// invalidate drops the bundle of one language and namespace. Writes to the
// default language affect every language's bundle.
func (s *TranslationService) invalidate(ctx context.Context, code, namespace string) {
	def, err := s.languages.FindDefault(ctx)
	if err == nil && def.Code == code {
		invalidateBundles(ctx, s.cache, s.logger, "")
		return
	}
	if err := s.cache.Delete(ctx, bundlePrefix+code+":"+namespace); err != nil {
		s.logger.Warn("Failed to invalidate translation bundle", zap.String("language", code), zap.Error(err))
	}
}
