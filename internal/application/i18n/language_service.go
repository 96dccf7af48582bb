package i18n

import (
	"context"
	"strings"

	"github.com/shopfront/backend/internal/domain/i18n"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const bundlePrefix = "i18n:bundle:"

// LanguageService manages storefront languages
type LanguageService struct {
	repo    i18n.LanguageRepository
	txScope TransactionScope
	cache   cache.Cache
	logger  *zap.Logger
}

// NewLanguageService creates a new language service. A nil txScope runs
// multi-row changes without a transaction.
func NewLanguageService(
	repo i18n.LanguageRepository,
	translations i18n.TranslationRepository,
	txScope TransactionScope,
	c cache.Cache,
	logger *zap.Logger,
) *LanguageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.Noop{}
	}
	if txScope == nil {
		txScope = NewNoOpTransactionScope(repo, translations)
	}
	return &LanguageService{repo: repo, txScope: txScope, cache: c, logger: logger}
}

// Create adds a language. The first language created becomes the default.
func (s *LanguageService) Create(ctx context.Context, req CreateLanguageRequest) (*LanguageResponse, error) {
	lang, err := i18n.NewLanguage(req.Code, req.Name, req.NativeName)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByCode(ctx, lang.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Language "+lang.Code+" already exists")
	}
	if req.Direction != "" || req.SortOrder != 0 {
		if err := lang.Update(lang.Name, lang.NativeName, i18n.Direction(req.Direction), req.SortOrder); err != nil {
			return nil, err
		}
	}

	makeDefault := req.IsDefault
	if !makeDefault {
		if _, err := s.repo.FindDefault(ctx); err != nil {
			if !shared.IsNotFound(err) {
				return nil, err
			}
			makeDefault = true
		}
	}

	if makeDefault {
		if err := lang.MarkDefault(); err != nil {
			return nil, err
		}
	}
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Languages().Save(ctx, lang); err != nil {
			return err
		}
		if makeDefault {
			return repos.Languages().SetDefault(ctx, lang.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if makeDefault {
		s.invalidate(ctx, "")
	}

	s.logger.Info("Language created", zap.String("code", lang.Code), zap.Bool("default", lang.IsDefault))
	response := ToLanguageResponse(lang)
	return &response, nil
}

// List returns languages ordered by sort order
func (s *LanguageService) List(ctx context.Context, activeOnly bool) ([]LanguageResponse, error) {
	langs, err := s.repo.FindAll(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	items := make([]LanguageResponse, len(langs))
	for i := range langs {
		items[i] = ToLanguageResponse(&langs[i])
	}
	return items, nil
}

// Get retrieves a language by code
func (s *LanguageService) Get(ctx context.Context, code string) (*LanguageResponse, error) {
	lang, err := s.find(ctx, code)
	if err != nil {
		return nil, err
	}
	response := ToLanguageResponse(lang)
	return &response, nil
}

// Update changes display attributes and the active flag
func (s *LanguageService) Update(ctx context.Context, code string, req UpdateLanguageRequest) (*LanguageResponse, error) {
	lang, err := s.find(ctx, code)
	if err != nil {
		return nil, err
	}

	name, native, sortOrder := lang.Name, lang.NativeName, lang.SortOrder
	var direction i18n.Direction
	if req.Name != nil {
		name = *req.Name
	}
	if req.NativeName != nil {
		native = *req.NativeName
	}
	if req.Direction != nil {
		direction = i18n.Direction(*req.Direction)
	}
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}
	if err := lang.Update(name, native, direction, sortOrder); err != nil {
		return nil, err
	}
	if req.Active != nil {
		if *req.Active {
			lang.Activate()
		} else if err := lang.Deactivate(); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, lang); err != nil {
		return nil, err
	}
	response := ToLanguageResponse(lang)
	return &response, nil
}

// SetDefault makes code the store default, clearing the previous one
func (s *LanguageService) SetDefault(ctx context.Context, code string) (*LanguageResponse, error) {
	lang, err := s.find(ctx, code)
	if err != nil {
		return nil, err
	}
	if lang.IsDefault {
		response := ToLanguageResponse(lang)
		return &response, nil
	}
	if err := lang.MarkDefault(); err != nil {
		return nil, err
	}
	if err := s.repo.SetDefault(ctx, lang.ID); err != nil {
		return nil, err
	}

	// every bundle overlays the default language
	s.invalidate(ctx, "")
	s.logger.Info("Default language changed", zap.String("code", lang.Code))

	response := ToLanguageResponse(lang)
	return &response, nil
}

// Delete removes a language and all of its translations
func (s *LanguageService) Delete(ctx context.Context, code string) error {
	lang, err := s.find(ctx, code)
	if err != nil {
		return err
	}
	if err := lang.CanDelete(); err != nil {
		return err
	}
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Translations().DeleteByLanguage(ctx, lang.Code); err != nil {
			return err
		}
		return repos.Languages().Delete(ctx, lang.ID)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, lang.Code)
	s.logger.Info("Language deleted", zap.String("code", lang.Code))
	return nil
}

// Negotiate picks the storefront language of a request. An explicit code
// wins; otherwise Accept-Language is matched against the active languages and
// the default language is used when nothing matches.
func (s *LanguageService) Negotiate(ctx context.Context, explicit, acceptLanguage string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return i18n.CanonicalCode(explicit)
	}
	langs, err := s.repo.FindAll(ctx, true)
	if err != nil {
		return "", err
	}
	if len(langs) == 0 {
		return "", shared.ErrNotFound
	}

	// the matcher falls back to its first tag
	codes := make([]string, 0, len(langs))
	for i := range langs {
		if langs[i].IsDefault {
			codes = append([]string{langs[i].Code}, codes...)
		} else {
			codes = append(codes, langs[i].Code)
		}
	}
	if acceptLanguage == "" {
		return codes[0], nil
	}
	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return codes[0], nil
	}
	supported := make([]language.Tag, len(codes))
	for i, code := range codes {
		supported[i] = language.Make(code)
	}
	_, index, confidence := language.NewMatcher(supported).Match(desired...)
	if confidence == language.No {
		return codes[0], nil
	}
	return codes[index], nil
}

func (s *LanguageService) find(ctx context.Context, code string) (*i18n.Language, error) {
	canonical, err := i18n.CanonicalCode(code)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByCode(ctx, canonical)
}

func (s *LanguageService) invalidate(ctx context.Context, code string) {
	invalidateBundles(ctx, s.cache, s.logger, code)
}

// invalidateBundles drops cached bundles of one language, or all when code is empty
func invalidateBundles(ctx context.Context, c cache.Cache, logger *zap.Logger, code string) {
	prefix := bundlePrefix
	if code != "" {
		prefix += code + ":"
	}
	if err := c.DeletePrefix(ctx, prefix); err != nil {
		logger.Warn("Failed to invalidate translation bundles", zap.String("prefix", prefix), zap.Error(err))
	}
}
