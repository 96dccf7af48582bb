package cms

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/cms"
)

// SEOInput carries page metadata for the storefront head
type SEOInput struct {
	Title       string `json:"title" binding:"max=200"`
	Description string `json:"description" binding:"max=500"`
	OGImage     string `json:"og_image" binding:"omitempty,max=500"`
}

func (s SEOInput) toDomain() cms.SEO {
	return cms.SEO{Title: s.Title, Description: s.Description, OGImage: s.OGImage}
}

// BlockInput describes a block to add to a page
type BlockInput struct {
	Type    string                 `json:"type" binding:"required"`
	Content map[string]interface{} `json:"content" binding:"required"`
	Visible *bool                  `json:"visible"`
}

// CreatePageRequest creates a draft page. LanguageCode defaults to the store default.
type CreatePageRequest struct {
	Title        string       `json:"title" binding:"required,min=1,max=200"`
	Slug         string       `json:"slug" binding:"omitempty,max=200"`
	LanguageCode string       `json:"language_code" binding:"omitempty,max=35"`
	SEO          SEOInput     `json:"seo"`
	Blocks       []BlockInput `json:"blocks" binding:"omitempty,max=100,dive"`
}

// UpdatePageRequest is a partial update of a page
type UpdatePageRequest struct {
	Title *string   `json:"title" binding:"omitempty,min=1,max=200"`
	Slug  *string   `json:"slug" binding:"omitempty,max=200"`
	SEO   *SEOInput `json:"seo"`
}

// UpdateBlockRequest replaces a block's content and optionally its visibility
type UpdateBlockRequest struct {
	Content map[string]interface{} `json:"content" binding:"required"`
	Visible *bool                  `json:"visible"`
}

// ReorderBlocksRequest lists every block id of a page in the new order
type ReorderBlocksRequest struct {
	BlockIDs []uuid.UUID `json:"block_ids" binding:"required"`
}

// CreateTranslationRequest copies a base page into another language
type CreateTranslationRequest struct {
	LanguageCode string `json:"language_code" binding:"required,max=35"`
	Title        string `json:"title" binding:"omitempty,max=200"`
	Slug         string `json:"slug" binding:"omitempty,max=200"`
}

// UpdateTranslatedBlockRequest carries translated content; only translatable
// fields are kept
type UpdateTranslatedBlockRequest struct {
	Content map[string]interface{} `json:"content" binding:"required"`
}

// PageListFilter holds the list query parameters
type PageListFilter struct {
	Search       string `form:"search"`
	Status       string `form:"status" binding:"omitempty,oneof=draft published"`
	LanguageCode string `form:"language"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BlockResponse represents a block in API responses
type BlockResponse struct {
	ID        uuid.UUID              `json:"id"`
	Type      string                 `json:"type"`
	Position  int                    `json:"position"`
	Content   map[string]interface{} `json:"content"`
	Visible   bool                   `json:"visible"`
	SourceID  *uuid.UUID             `json:"source_block_id,omitempty"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// SEOResponse represents page metadata in API responses
type SEOResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	OGImage     string `json:"og_image,omitempty"`
}

// PageResponse represents a page with its blocks
type PageResponse struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	LanguageCode  string          `json:"language_code"`
	TranslationOf *uuid.UUID      `json:"translation_of,omitempty"`
	Status        string          `json:"status"`
	SEO           SEOResponse     `json:"seo"`
	PublishedAt   *time.Time      `json:"published_at,omitempty"`
	Blocks        []BlockResponse `json:"blocks"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PageListItemResponse is the list projection of a page
type PageListItemResponse struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	LanguageCode  string     `json:"language_code"`
	TranslationOf *uuid.UUID `json:"translation_of,omitempty"`
	Status        string     `json:"status"`
	BlockCount    int        `json:"block_count"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// RenderedPage is a published page as served to the storefront
type RenderedPage struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	LanguageCode string          `json:"language_code"`
	Fallback     bool            `json:"fallback"`
	SEO          SEOResponse     `json:"seo"`
	Blocks       []BlockResponse `json:"blocks"`
	PublishedAt  *time.Time      `json:"published_at,omitempty"`
}

// ToBlockResponse converts a domain block to a response
func ToBlockResponse(b *cms.Block) BlockResponse {
	return BlockResponse{
		ID:        b.ID,
		Type:      string(b.Type),
		Position:  b.Position,
		Content:   b.Content.Clone(),
		Visible:   b.Visible,
		SourceID:  b.SourceBlockID,
		UpdatedAt: b.UpdatedAt,
	}
}

func toSEOResponse(s cms.SEO) SEOResponse {
	return SEOResponse{Title: s.Title, Description: s.Description, OGImage: s.OGImage}
}

// ToPageResponse converts a domain page to a response, blocks ordered by position
func ToPageResponse(p *cms.Page) PageResponse {
	blocks := make([]BlockResponse, len(p.Blocks))
	for i := range p.Blocks {
		blocks[i] = ToBlockResponse(&p.Blocks[i])
	}
	sortBlocks(blocks)
	return PageResponse{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		LanguageCode:  p.LanguageCode,
		TranslationOf: p.TranslationOf,
		Status:        string(p.Status),
		SEO:           toSEOResponse(p.SEO),
		PublishedAt:   p.PublishedAt,
		Blocks:        blocks,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToPageListItemResponses converts pages to list items
func ToPageListItemResponses(pages []cms.Page) []PageListItemResponse {
	items := make([]PageListItemResponse, len(pages))
	for i := range pages {
		p := &pages[i]
		items[i] = PageListItemResponse{
			ID:            p.ID,
			Title:         p.Title,
			Slug:          p.Slug,
			LanguageCode:  p.LanguageCode,
			TranslationOf: p.TranslationOf,
			Status:        string(p.Status),
			BlockCount:    len(p.Blocks),
			PublishedAt:   p.PublishedAt,
			UpdatedAt:     p.UpdatedAt,
		}
	}
	return items
}

func toRenderedPage(p *cms.Page, fallback bool) RenderedPage {
	visible := p.VisibleBlocks()
	blocks := make([]BlockResponse, len(visible))
	for i := range visible {
		blocks[i] = ToBlockResponse(&visible[i])
	}
	return RenderedPage{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		LanguageCode: p.LanguageCode,
		Fallback:     fallback,
		SEO:          toSEOResponse(p.SEO),
		Blocks:       blocks,
		PublishedAt:  p.PublishedAt,
	}
}

func sortBlocks(blocks []BlockResponse) {
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Position < blocks[j].Position })
}
