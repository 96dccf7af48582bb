package cms

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/cms"
	"github.com/shopfront/backend/internal/domain/i18n"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

const renderPrefix = "cms:page:"

var pageSortFields = map[string]bool{
	"title": true, "slug": true, "created_at": true, "updated_at": true, "published_at": true,
}

// PageService manages CMS pages, their blocks and translations
type PageService struct {
	pages          cms.PageRepository
	languages      i18n.LanguageRepository
	cache          cache.Cache
	renderTTL      time.Duration
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPageService creates a new page service
func NewPageService(
	pages cms.PageRepository,
	languages i18n.LanguageRepository,
	c cache.Cache,
	renderTTL time.Duration,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *PageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.Noop{}
	}
	return &PageService{
		pages:          pages,
		languages:      languages,
		cache:          c,
		renderTTL:      renderTTL,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create adds a draft page with optional initial blocks
func (s *PageService) Create(ctx context.Context, req CreatePageRequest) (*PageResponse, error) {
	lang, err := s.resolveLanguage(ctx, req.LanguageCode)
	if err != nil {
		return nil, err
	}
	page, err := cms.NewPage(req.Title, strings.ToLower(strings.TrimSpace(req.Slug)), lang)
	if err != nil {
		return nil, err
	}
	if err := page.Update(page.Title, "", req.SEO.toDomain()); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, page, nil); err != nil {
		return nil, err
	}
	for _, in := range req.Blocks {
		if _, err := addBlock(page, in); err != nil {
			return nil, err
		}
	}

	if err := s.pages.Save(ctx, page); err != nil {
		return nil, err
	}
	s.logger.Info("Page created",
		zap.String("page_id", page.ID.String()),
		zap.String("slug", page.Slug),
		zap.String("language", page.LanguageCode))

	response := ToPageResponse(page)
	return &response, nil
}

// Get retrieves a page with its blocks
func (s *PageService) Get(ctx context.Context, id uuid.UUID) (*PageResponse, error) {
	page, err := s.pages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPageResponse(page)
	return &response, nil
}

// List returns a page of CMS pages
func (s *PageService) List(ctx context.Context, filter PageListFilter) (*shared.Paginated[PageListItemResponse], error) {
	orderBy := filter.OrderBy
	if !pageSortFields[orderBy] {
		orderBy = "updated_at"
	}
	orderDir := filter.OrderDir
	if orderDir == "" {
		orderDir = "desc"
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   strings.TrimSpace(filter.Search),
		OrderBy:  orderBy,
		OrderDir: orderDir,
	}.Normalize(100)
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.LanguageCode != "" {
		code, err := i18n.CanonicalCode(filter.LanguageCode)
		if err != nil {
			return nil, err
		}
		domainFilter.Filters["language_code"] = code
	}

	pages, err := s.pages.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.pages.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToPageListItemResponses(pages), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// Update changes title, slug and SEO metadata
func (s *PageService) Update(ctx context.Context, id uuid.UUID, req UpdatePageRequest) (*PageResponse, error) {
	return s.mutate(ctx, id, func(page *cms.Page) error {
		title, seo := page.Title, page.SEO
		slug := ""
		if req.Title != nil {
			title = *req.Title
		}
		if req.SEO != nil {
			seo = req.SEO.toDomain()
		}
		if req.Slug != nil {
			slug = strings.ToLower(strings.TrimSpace(*req.Slug))
		}
		if err := page.Update(title, slug, seo); err != nil {
			return err
		}
		if slug != "" {
			return s.ensureSlugFree(ctx, page, &page.ID)
		}
		return nil
	})
}

// Delete removes a page. Deleting a base page removes its translations.
func (s *PageService) Delete(ctx context.Context, id uuid.UUID) error {
	page, err := s.pages.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.pages.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info("Page deleted", zap.String("page_id", id.String()), zap.String("slug", page.Slug))
	return nil
}

// Publish makes a page visible on the storefront
func (s *PageService) Publish(ctx context.Context, id uuid.UUID) (*PageResponse, error) {
	return s.mutate(ctx, id, func(page *cms.Page) error {
		return page.Publish()
	})
}

// Unpublish returns a page to draft
func (s *PageService) Unpublish(ctx context.Context, id uuid.UUID) (*PageResponse, error) {
	return s.mutate(ctx, id, func(page *cms.Page) error {
		return page.Unpublish()
	})
}

// AddBlock appends a block to a page
func (s *PageService) AddBlock(ctx context.Context, pageID uuid.UUID, req BlockInput) (*BlockResponse, error) {
	var added uuid.UUID
	page, err := s.mutatePage(ctx, pageID, func(page *cms.Page) error {
		b, err := addBlock(page, req)
		if err != nil {
			return err
		}
		added = b.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blockResponse(page, added)
}

// UpdateBlock replaces a block's content. Visibility is kept when not given.
func (s *PageService) UpdateBlock(ctx context.Context, pageID, blockID uuid.UUID, req UpdateBlockRequest) (*BlockResponse, error) {
	page, err := s.mutatePage(ctx, pageID, func(page *cms.Page) error {
		b, err := page.Block(blockID)
		if err != nil {
			return err
		}
		visible := b.Visible
		if req.Visible != nil {
			visible = *req.Visible
		}
		_, err = page.UpdateBlock(blockID, req.Content, visible)
		return err
	})
	if err != nil {
		return nil, err
	}
	return blockResponse(page, blockID)
}

// DeleteBlock removes a block from a page
func (s *PageService) DeleteBlock(ctx context.Context, pageID, blockID uuid.UUID) error {
	_, err := s.mutatePage(ctx, pageID, func(page *cms.Page) error {
		return page.RemoveBlock(blockID)
	})
	return err
}

// ReorderBlocks rewrites block positions following the given order
func (s *PageService) ReorderBlocks(ctx context.Context, pageID uuid.UUID, req ReorderBlocksRequest) (*PageResponse, error) {
	return s.mutate(ctx, pageID, func(page *cms.Page) error {
		return page.ReorderBlocks(req.BlockIDs)
	})
}

// CreateTranslation copies a base page and its blocks into another language
func (s *PageService) CreateTranslation(ctx context.Context, baseID uuid.UUID, req CreateTranslationRequest) (*PageResponse, error) {
	base, err := s.pages.FindByID(ctx, baseID)
	if err != nil {
		return nil, err
	}
	lang, err := s.existingLanguage(ctx, req.LanguageCode)
	if err != nil {
		return nil, err
	}
	if _, err := s.pages.FindTranslation(ctx, base.ID, lang); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Page already has a "+lang+" translation")
	} else if !shared.IsNotFound(err) {
		return nil, err
	}

	translation, err := base.NewTranslation(lang, req.Title, strings.ToLower(strings.TrimSpace(req.Slug)))
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, translation, nil); err != nil {
		return nil, err
	}
	if err := s.pages.Save(ctx, translation); err != nil {
		return nil, err
	}
	s.logger.Info("Page translation created",
		zap.String("base_id", base.ID.String()),
		zap.String("page_id", translation.ID.String()),
		zap.String("language", lang))

	response := ToPageResponse(translation)
	return &response, nil
}

// ListTranslations returns the translations of a base page
func (s *PageService) ListTranslations(ctx context.Context, baseID uuid.UUID) ([]PageListItemResponse, error) {
	pages, err := s.pages.FindTranslations(ctx, baseID)
	if err != nil {
		return nil, err
	}
	return ToPageListItemResponses(pages), nil
}

// UpdateTranslatedBlock merges translated content into a block of a
// translation page. The base page block it was copied from supplies every
// structural, media and style field.
func (s *PageService) UpdateTranslatedBlock(ctx context.Context, pageID, blockID uuid.UUID, req UpdateTranslatedBlockRequest) (*BlockResponse, error) {
	page, err := s.mutatePage(ctx, pageID, func(page *cms.Page) error {
		if !page.IsTranslation() {
			return shared.NewDomainError("NOT_A_TRANSLATION", "Page is not a translation")
		}
		target, err := page.Block(blockID)
		if err != nil {
			return err
		}
		if target.SourceBlockID == nil {
			return shared.NewDomainError("INVALID_BASE_BLOCK", "Block was not copied from the base page")
		}
		base, err := s.pages.FindByID(ctx, *page.TranslationOf)
		if err != nil {
			return err
		}
		baseBlock, err := base.Block(*target.SourceBlockID)
		if err != nil {
			return shared.NewDomainError("INVALID_BASE_BLOCK", "The base page no longer has the source block")
		}
		_, err = page.MergeTranslatedBlock(blockID, baseBlock, req.Content)
		return err
	})
	if err != nil {
		return nil, err
	}
	return blockResponse(page, blockID)
}

// TranslatableFields splits a block's content by field class so editors
// know which fields to translate
func (s *PageService) TranslatableFields(ctx context.Context, pageID, blockID uuid.UUID) (*cms.Buckets, error) {
	page, err := s.pages.FindByID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	b, err := page.Block(blockID)
	if err != nil {
		return nil, err
	}
	buckets := cms.Split(b.Content)
	return &buckets, nil
}

// Render returns a published page for the storefront. When the language has
// no published version of slug, the default language page is served.
func (s *PageService) Render(ctx context.Context, languageCode, slug string) (*RenderedPage, error) {
	lang, err := i18n.CanonicalCode(languageCode)
	if err != nil {
		return nil, err
	}
	slug = strings.ToLower(strings.TrimSpace(slug))

	key := renderPrefix + lang + ":" + slug
	rendered, err := cache.GetOrLoad(ctx, s.cache, key, s.renderTTL, func(ctx context.Context) (RenderedPage, error) {
		return s.render(ctx, lang, slug)
	})
	if err != nil {
		return nil, err
	}
	return &rendered, nil
}

func (s *PageService) render(ctx context.Context, lang, slug string) (RenderedPage, error) {
	page, err := s.pages.FindBySlug(ctx, lang, slug)
	if err == nil && page.IsPublished() {
		return toRenderedPage(page, false), nil
	}
	if err != nil && !shared.IsNotFound(err) {
		return RenderedPage{}, err
	}

	def, err := s.languages.FindDefault(ctx)
	if err != nil {
		if shared.IsNotFound(err) {
			return RenderedPage{}, shared.ErrNotFound
		}
		return RenderedPage{}, err
	}
	if def.Code == lang {
		return RenderedPage{}, shared.ErrNotFound
	}

	base, err := s.pages.FindBySlug(ctx, def.Code, slug)
	if err != nil {
		return RenderedPage{}, err
	}
	// the translation may live under its own slug
	if translated, err := s.pages.FindTranslation(ctx, base.BaseID(), lang); err == nil && translated.IsPublished() {
		return toRenderedPage(translated, false), nil
	} else if err != nil && !shared.IsNotFound(err) {
		return RenderedPage{}, err
	}
	if !base.IsPublished() {
		return RenderedPage{}, shared.ErrNotFound
	}
	return toRenderedPage(base, true), nil
}

func (s *PageService) mutate(ctx context.Context, id uuid.UUID, change func(*cms.Page) error) (*PageResponse, error) {
	page, err := s.mutatePage(ctx, id, change)
	if err != nil {
		return nil, err
	}
	response := ToPageResponse(page)
	return &response, nil
}

func (s *PageService) mutatePage(ctx context.Context, id uuid.UUID, change func(*cms.Page) error) (*cms.Page, error) {
	page, err := s.pages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(page); err != nil {
		return nil, err
	}
	if err := s.pages.Save(ctx, page); err != nil {
		return nil, err
	}
	s.publish(ctx, page)
	s.invalidate(ctx)
	return page, nil
}

func (s *PageService) resolveLanguage(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(code) != "" {
		return s.existingLanguage(ctx, code)
	}
	def, err := s.languages.FindDefault(ctx)
	if err != nil {
		if shared.IsNotFound(err) {
			return "", shared.NewDomainError("INVALID_LANGUAGE", "No default language is configured")
		}
		return "", err
	}
	return def.Code, nil
}

func (s *PageService) existingLanguage(ctx context.Context, code string) (string, error) {
	canonical, err := i18n.CanonicalCode(code)
	if err != nil {
		return "", err
	}
	lang, err := s.languages.FindByCode(ctx, canonical)
	if err != nil {
		if shared.IsNotFound(err) {
			return "", shared.NewDomainError("INVALID_LANGUAGE", "Language "+canonical+" is not configured")
		}
		return "", err
	}
	return lang.Code, nil
}

func (s *PageService) ensureSlugFree(ctx context.Context, page *cms.Page, exclude *uuid.UUID) error {
	taken, err := s.pages.ExistsBySlug(ctx, page.LanguageCode, page.Slug, exclude)
	if err != nil {
		return err
	}
	if taken {
		return shared.NewDomainError("ALREADY_EXISTS", "A page with slug '"+page.Slug+"' already exists in "+page.LanguageCode)
	}
	return nil
}

func (s *PageService) publish(ctx context.Context, page *cms.Page) {
	events := page.GetDomainEvents()
	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish page events", zap.Error(err))
		}
	}
	page.ClearDomainEvents()
}

// invalidate drops every rendered page; a single edit can change the
// fallback of other languages
func (s *PageService) invalidate(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, renderPrefix); err != nil {
		s.logger.Warn("Failed to invalidate rendered pages", zap.Error(err))
	}
}

func addBlock(page *cms.Page, in BlockInput) (*cms.Block, error) {
	b, err := page.AddBlock(cms.BlockType(in.Type), in.Content)
	if err != nil {
		return nil, err
	}
	if in.Visible != nil && !*in.Visible {
		return page.UpdateBlock(b.ID, b.Content, false)
	}
	return b, nil
}

func blockResponse(page *cms.Page, id uuid.UUID) (*BlockResponse, error) {
	b, err := page.Block(id)
	if err != nil {
		return nil, err
	}
	response := ToBlockResponse(b)
	return &response, nil
}
