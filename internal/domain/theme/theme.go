package theme

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopfront/backend/internal/domain/shared"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Theme is a storefront look and feel: colors, typography, layout and custom CSS
type Theme struct {
	shared.BaseAggregateRoot
	Name         string         `gorm:"type:varchar(100);not null"`
	Slug         string         `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description  string         `gorm:"type:text"`
	Settings     shared.JSONMap `gorm:"type:jsonb"`
	PreviewImage string         `gorm:"type:varchar(500)"`
	Active       bool           `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (Theme) TableName() string {
	return "themes"
}

// DefaultSettings is the starting configuration of a new theme
func DefaultSettings() shared.JSONMap {
	return shared.JSONMap{
		"colors": map[string]interface{}{
			"primary":    "#111827",
			"secondary":  "#6B7280",
			"accent":     "#F59E0B",
			"background": "#FFFFFF",
			"text":       "#111827",
		},
		"typography": map[string]interface{}{
			"heading_font": "Inter",
			"body_font":    "Inter",
			"base_size":    16.0,
		},
		"layout": map[string]interface{}{
			"container_width": "1280px",
			"header_style":    "centered",
		},
		"custom_css": "",
	}
}

// NewTheme creates an inactive theme. Missing settings fall back to defaults.
func NewTheme(name, slug, description string, settings map[string]interface{}) (*Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Theme name is required and cannot exceed 100 characters")
	}
	if slug == "" {
		slug = shared.Slugify(name)
	}
	if !shared.IsValidSlug(slug) || len(slug) > 100 {
		return nil, shared.NewDomainError("INVALID_SLUG", "Theme slug is invalid")
	}
	merged := DefaultSettings()
	for k, v := range settings {
		merged[k] = v
	}
	if err := ValidateSettings(merged); err != nil {
		return nil, err
	}

	return &Theme{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Description:       description,
		Settings:          merged.Clone(),
	}, nil
}

// ValidateSettings checks color values and custom CSS size
func ValidateSettings(settings map[string]interface{}) error {
	if colors, ok := settings["colors"].(map[string]interface{}); ok {
		for name, v := range colors {
			s, isString := v.(string)
			if !isString || !hexColor.MatchString(s) {
				return shared.NewDomainError("INVALID_SETTINGS", "Color '"+name+"' must be a hex value like #1A2B3C")
			}
		}
	}
	if css, ok := settings["custom_css"].(string); ok {
		if len(css) > 50000 {
			return shared.NewDomainError("INVALID_SETTINGS", "Custom CSS cannot exceed 50000 characters")
		}
		if strings.Contains(strings.ToLower(css), "</style") {
			return shared.NewDomainError("INVALID_SETTINGS", "Custom CSS cannot close the style element")
		}
	}
	return nil
}

// Update replaces name, description, preview and settings
func (t *Theme) Update(name, description, previewImage string, settings map[string]interface{}) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Theme name is required and cannot exceed 100 characters")
	}
	if settings != nil {
		if err := ValidateSettings(settings); err != nil {
			return err
		}
		t.Settings = shared.JSONMap(settings).Clone()
	}
	t.Name = name
	t.Description = description
	t.PreviewImage = previewImage
	t.touch()
	return nil
}

// Duplicate copies the theme as a new inactive theme
func (t *Theme) Duplicate(name, slug string) (*Theme, error) {
	if name == "" {
		name = t.Name + " (copy)"
	}
	if slug == "" {
		slug = t.Slug + "-copy"
	}
	dup, err := NewTheme(name, slug, t.Description, t.Settings.Clone())
	if err != nil {
		return nil, err
	}
	dup.PreviewImage = t.PreviewImage
	return dup, nil
}

// CanDelete reports whether the theme may be removed
func (t *Theme) CanDelete() error {
	if t.Active {
		return shared.NewDomainError("THEME_ACTIVE", "The active theme cannot be deleted")
	}
	return nil
}

func (t *Theme) touch() {
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}
