package theme

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/theme"
)

// CreateThemeRequest represents a request to create a theme
type CreateThemeRequest struct {
	Name         string                 `json:"name" binding:"required,min=1,max=100"`
	Slug         string                 `json:"slug" binding:"omitempty,max=100"`
	Description  string                 `json:"description" binding:"max=2000"`
	Settings     map[string]interface{} `json:"settings"`
	PreviewImage string                 `json:"preview_image" binding:"omitempty,url,max=500"`
}

// UpdateThemeRequest is a partial update of a theme. Settings replace the
// stored settings as a whole.
type UpdateThemeRequest struct {
	Name         *string                `json:"name" binding:"omitempty,min=1,max=100"`
	Description  *string                `json:"description" binding:"omitempty,max=2000"`
	Settings     map[string]interface{} `json:"settings"`
	PreviewImage *string                `json:"preview_image" binding:"omitempty,max=500"`
}

// DuplicateThemeRequest names the copy; both fields are derived when empty
type DuplicateThemeRequest struct {
	Name string `json:"name" binding:"omitempty,max=100"`
	Slug string `json:"slug" binding:"omitempty,max=100"`
}

// ThemeResponse represents a theme in API responses
type ThemeResponse struct {
	ID           uuid.UUID              `json:"id"`
	Name         string                 `json:"name"`
	Slug         string                 `json:"slug"`
	Description  string                 `json:"description"`
	Settings     map[string]interface{} `json:"settings"`
	PreviewImage string                 `json:"preview_image,omitempty"`
	Active       bool                   `json:"active"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// ToThemeResponse converts a domain theme to a response
func ToThemeResponse(t *theme.Theme) ThemeResponse {
	return ThemeResponse{
		ID:           t.ID,
		Name:         t.Name,
		Slug:         t.Slug,
		Description:  t.Description,
		Settings:     t.Settings.Clone(),
		PreviewImage: t.PreviewImage,
		Active:       t.Active,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
