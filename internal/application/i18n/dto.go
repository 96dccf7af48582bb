package i18n

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/i18n"
)

// CreateLanguageRequest adds a storefront language. Name and native name are
// derived from the code when omitted.
type CreateLanguageRequest struct {
	Code       string `json:"code" binding:"required,max=20"`
	Name       string `json:"name" binding:"max=100"`
	NativeName string `json:"native_name" binding:"max=100"`
	Direction  string `json:"direction" binding:"omitempty,oneof=ltr rtl"`
	SortOrder  int    `json:"sort_order"`
	IsDefault  bool   `json:"is_default"`
}

// UpdateLanguageRequest is a partial update of a language
type UpdateLanguageRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=100"`
	NativeName *string `json:"native_name" binding:"omitempty,max=100"`
	Direction  *string `json:"direction" binding:"omitempty,oneof=ltr rtl"`
	SortOrder  *int    `json:"sort_order"`
	Active     *bool   `json:"active"`
}

// LanguageResponse represents a language in API responses
type LanguageResponse struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	NativeName string    `json:"native_name"`
	Direction  string    `json:"direction"`
	Active     bool      `json:"active"`
	IsDefault  bool      `json:"is_default"`
	SortOrder  int       `json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToLanguageResponse converts a domain language to a response
func ToLanguageResponse(l *i18n.Language) LanguageResponse {
	return LanguageResponse{
		ID:         l.ID,
		Code:       l.Code,
		Name:       l.Name,
		NativeName: l.NativeName,
		Direction:  string(l.Direction),
		Active:     l.Active,
		IsDefault:  l.IsDefault,
		SortOrder:  l.SortOrder,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

// TranslationListFilter holds the list query parameters
type TranslationListFilter struct {
	Language    string `form:"language"`
	Namespace   string `form:"namespace"`
	Search      string `form:"search"`
	MissingOnly bool   `form:"missing"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// UpsertTranslationRequest creates or replaces one string
type UpsertTranslationRequest struct {
	LanguageCode string `json:"language_code" binding:"required"`
	Namespace    string `json:"namespace" binding:"omitempty,max=50"`
	Key          string `json:"key" binding:"required,max=200"`
	Value        string `json:"value" binding:"max=10000"`
}

// BulkUpsertRequest creates or replaces many strings of one language and namespace
type BulkUpsertRequest struct {
	LanguageCode string            `json:"language_code" binding:"required"`
	Namespace    string            `json:"namespace" binding:"omitempty,max=50"`
	Translations map[string]string `json:"translations" binding:"required,min=1,max=5000"`
}

// ImportRequest loads a key/value document; nested objects are flattened with dots
type ImportRequest struct {
	LanguageCode string                 `json:"language_code" binding:"required"`
	Namespace    string                 `json:"namespace" binding:"omitempty,max=50"`
	Data         map[string]interface{} `json:"data" binding:"required"`
}

// ImportResult reports how many strings were written
type ImportResult struct {
	Imported int `json:"imported"`
}

// TranslationResponse represents a translation in API responses
type TranslationResponse struct {
	ID           uuid.UUID `json:"id,omitempty"`
	LanguageCode string    `json:"language_code"`
	Namespace    string    `json:"namespace"`
	Key          string    `json:"key"`
	Value        string    `json:"value"`
	Missing      bool      `json:"missing,omitempty"`
	DefaultValue string    `json:"default_value,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// ToTranslationResponse converts a domain translation to a response
func ToTranslationResponse(t *i18n.Translation) TranslationResponse {
	return TranslationResponse{
		ID:           t.ID,
		LanguageCode: t.LanguageCode,
		Namespace:    t.Namespace,
		Key:          t.Key,
		Value:        t.Value,
		UpdatedAt:    t.UpdatedAt,
	}
}

// MissingTranslation is a key present in the default language but absent in another
type MissingTranslation struct {
	Namespace    string `json:"namespace"`
	Key          string `json:"key"`
	DefaultValue string `json:"default_value"`
}
