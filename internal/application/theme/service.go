package theme

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/theme"
	"github.com/shopfront/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

const (
	activeThemeKey  = "theme:active"
	maxSlugAttempts = 20
)

// Service manages storefront themes
type Service struct {
	repo     theme.Repository
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewService creates a new theme service
func NewService(repo theme.Repository, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{repo: repo, cache: c, cacheTTL: cacheTTL, logger: logger}
}

// Create adds an inactive theme
func (s *Service) Create(ctx context.Context, req CreateThemeRequest) (*ThemeResponse, error) {
	slug := req.Slug
	if slug != "" {
		taken, err := s.repo.ExistsBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Theme with this slug already exists")
		}
	} else {
		var err error
		if slug, err = s.uniqueSlug(ctx, shared.Slugify(req.Name)); err != nil {
			return nil, err
		}
	}

	t, err := theme.NewTheme(req.Name, slug, req.Description, req.Settings)
	if err != nil {
		return nil, err
	}
	t.PreviewImage = req.PreviewImage
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("Theme created", zap.String("theme_id", t.ID.String()), zap.String("slug", t.Slug))

	response := ToThemeResponse(t)
	return &response, nil
}

// List returns every theme
func (s *Service) List(ctx context.Context) ([]ThemeResponse, error) {
	themes, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]ThemeResponse, len(themes))
	for i := range themes {
		items[i] = ToThemeResponse(&themes[i])
	}
	return items, nil
}

// Get retrieves a theme by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ThemeResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToThemeResponse(t)
	return &response, nil
}

// Update changes a theme. Changes to the active theme reach the storefront immediately.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateThemeRequest) (*ThemeResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name, description, preview := t.Name, t.Description, t.PreviewImage
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.PreviewImage != nil {
		preview = *req.PreviewImage
	}
	if err := t.Update(name, description, preview, req.Settings); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	if t.Active {
		s.invalidate(ctx)
	}

	response := ToThemeResponse(t)
	return &response, nil
}

// Delete removes an inactive theme
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := t.CanDelete(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Theme deleted", zap.String("theme_id", id.String()))
	return nil
}

// Activate makes id the storefront theme, deactivating the current one
func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*ThemeResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.Active {
		if err := s.repo.Activate(ctx, id); err != nil {
			return nil, err
		}
		t.Active = true
		s.invalidate(ctx)
		s.logger.Info("Theme activated", zap.String("theme_id", id.String()), zap.String("slug", t.Slug))
	}
	response := ToThemeResponse(t)
	return &response, nil
}

// Duplicate copies a theme as a new inactive one
func (s *Service) Duplicate(ctx context.Context, id uuid.UUID, req DuplicateThemeRequest) (*ThemeResponse, error) {
	source, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	slug := req.Slug
	if slug == "" {
		base := source.Slug + "-copy"
		if req.Name != "" {
			base = shared.Slugify(req.Name)
		}
		if slug, err = s.uniqueSlug(ctx, base); err != nil {
			return nil, err
		}
	} else {
		taken, err := s.repo.ExistsBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Theme with this slug already exists")
		}
	}

	dup, err := source.Duplicate(req.Name, slug)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, dup); err != nil {
		return nil, err
	}
	response := ToThemeResponse(dup)
	return &response, nil
}

// Active returns the storefront theme, cached
func (s *Service) Active(ctx context.Context) (*ThemeResponse, error) {
	response, err := cache.GetOrLoad(ctx, s.cache, activeThemeKey, s.cacheTTL, func(ctx context.Context) (ThemeResponse, error) {
		t, err := s.repo.FindActive(ctx)
		if err != nil {
			return ThemeResponse{}, err
		}
		return ToThemeResponse(t), nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// uniqueSlug appends -2, -3, ... to base until it is free
func (s *Service) uniqueSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := s.repo.ExistsBySlug(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", shared.NewDomainError("ALREADY_EXISTS", "Could not derive a unique slug, set one explicitly")
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, activeThemeKey); err != nil {
		s.logger.Warn("Failed to invalidate active theme", zap.Error(err))
	}
}
