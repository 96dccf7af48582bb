package cms

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// PageStatus is the publication status of a page
type PageStatus string

const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "published"
)

// MaxBlocksPerPage caps the number of blocks on one page
const MaxBlocksPerPage = 100

// SEO is the page metadata used by the storefront head
type SEO struct {
	Title       string `gorm:"column:seo_title;type:varchar(200)" json:"title"`
	Description string `gorm:"column:seo_description;type:varchar(500)" json:"description"`
	OGImage     string `gorm:"column:og_image;type:varchar(500)" json:"og_image"`
}

// Page is a CMS page in a single language
type Page struct {
	shared.BaseAggregateRoot
	Title         string     `gorm:"type:varchar(200);not null"`
	Slug          string     `gorm:"type:varchar(200);not null;uniqueIndex:idx_cms_pages_lang_slug"`
	LanguageCode  string     `gorm:"type:varchar(35);not null;uniqueIndex:idx_cms_pages_lang_slug"`
	TranslationOf *uuid.UUID `gorm:"type:uuid;index"`
	Status        PageStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	SEO           SEO        `gorm:"embedded"`
	PublishedAt   *time.Time
	Blocks        []Block `gorm:"foreignKey:PageID"`
}

// TableName returns the table name for GORM
func (Page) TableName() string {
	return "cms_pages"
}

// NewPage creates a draft page
func NewPage(title, slug, languageCode string) (*Page, error) {
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if slug == "" {
		slug = shared.Slugify(title)
	}
	if !shared.IsValidSlug(slug) {
		return nil, shared.NewDomainError("INVALID_SLUG", "Slug may only contain lowercase letters, numbers and single hyphens")
	}
	if languageCode == "" {
		return nil, shared.NewDomainError("INVALID_LANGUAGE", "Language code is required")
	}

	return &Page{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             title,
		Slug:              slug,
		LanguageCode:      languageCode,
		Status:            PageStatusDraft,
		Blocks:            []Block{},
	}, nil
}

// Update changes title, slug and SEO metadata
func (p *Page) Update(title, slug string, seo SEO) error {
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return err
	}
	if slug != "" {
		if !shared.IsValidSlug(slug) {
			return shared.NewDomainError("INVALID_SLUG", "Slug may only contain lowercase letters, numbers and single hyphens")
		}
		p.Slug = slug
	}
	if len(seo.Title) > 200 || len(seo.Description) > 500 {
		return shared.NewDomainError("INVALID_SEO", "SEO title max 200 and description max 500 characters")
	}
	p.Title = title
	p.SEO = seo
	p.touch()
	return nil
}

// Publish makes the page visible on the storefront
func (p *Page) Publish() error {
	if p.Status == PageStatusPublished {
		return shared.NewDomainError("ALREADY_PUBLISHED", "Page is already published")
	}
	now := time.Now()
	p.Status = PageStatusPublished
	p.PublishedAt = &now
	p.touch()
	p.AddDomainEvent(NewPagePublishedEvent(p))
	return nil
}

// Unpublish returns the page to draft
func (p *Page) Unpublish() error {
	if p.Status != PageStatusPublished {
		return shared.NewDomainError("NOT_PUBLISHED", "Page is not published")
	}
	p.Status = PageStatusDraft
	p.touch()
	p.AddDomainEvent(NewPageUnpublishedEvent(p))
	return nil
}

// IsPublished reports whether the page is live
func (p *Page) IsPublished() bool {
	return p.Status == PageStatusPublished
}

// IsTranslation reports whether the page translates another page
func (p *Page) IsTranslation() bool {
	return p.TranslationOf != nil
}

// BaseID returns the id of the page group this page belongs to
func (p *Page) BaseID() uuid.UUID {
	if p.TranslationOf != nil {
		return *p.TranslationOf
	}
	return p.ID
}

// AddBlock appends a block at the end of the page
func (p *Page) AddBlock(blockType BlockType, content map[string]interface{}) (*Block, error) {
	if len(p.Blocks) >= MaxBlocksPerPage {
		return nil, shared.NewDomainError("TOO_MANY_BLOCKS", "A page can have at most 100 blocks")
	}
	if err := ValidateBlockContent(blockType, content); err != nil {
		return nil, err
	}
	p.sortBlocks()
	b := newBlock(p.ID, blockType, content, len(p.Blocks))
	p.Blocks = append(p.Blocks, *b)
	p.touch()
	return &p.Blocks[len(p.Blocks)-1], nil
}

// Block returns the block with the given id
func (p *Page) Block(id uuid.UUID) (*Block, error) {
	for i := range p.Blocks {
		if p.Blocks[i].ID == id {
			return &p.Blocks[i], nil
		}
	}
	return nil, shared.NewDomainError("BLOCK_NOT_FOUND", "Block not found on this page")
}

// UpdateBlock replaces a block's content and visibility
func (p *Page) UpdateBlock(id uuid.UUID, content map[string]interface{}, visible bool) (*Block, error) {
	b, err := p.Block(id)
	if err != nil {
		return nil, err
	}
	if err := ValidateBlockContent(b.Type, content); err != nil {
		return nil, err
	}
	b.Content = shared.JSONMap(content).Clone()
	b.Visible = visible
	b.touch()
	p.touch()
	return b, nil
}

// RemoveBlock deletes a block and closes the position gap
func (p *Page) RemoveBlock(id uuid.UUID) error {
	p.sortBlocks()
	idx := -1
	for i := range p.Blocks {
		if p.Blocks[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return shared.NewDomainError("BLOCK_NOT_FOUND", "Block not found on this page")
	}
	p.Blocks = append(p.Blocks[:idx], p.Blocks[idx+1:]...)
	for i := range p.Blocks {
		p.Blocks[i].Position = i
	}
	p.touch()
	return nil
}

// ReorderBlocks rewrites positions 0..n-1 following ids, which must name
// every block of the page exactly once.
func (p *Page) ReorderBlocks(ids []uuid.UUID) error {
	if len(ids) != len(p.Blocks) {
		return shared.NewDomainError("INVALID_ORDER", "Block order must list every block of the page exactly once")
	}
	index := make(map[uuid.UUID]int, len(p.Blocks))
	for i := range p.Blocks {
		index[p.Blocks[i].ID] = i
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := index[id]; !ok {
			return shared.NewDomainError("INVALID_ORDER", "Block "+id.String()+" does not belong to this page")
		}
		if _, dup := seen[id]; dup {
			return shared.NewDomainError("INVALID_ORDER", "Block "+id.String()+" is listed more than once")
		}
		seen[id] = struct{}{}
	}
	for pos, id := range ids {
		b := &p.Blocks[index[id]]
		if b.Position != pos {
			b.Position = pos
			b.touch()
		}
	}
	p.sortBlocks()
	p.touch()
	return nil
}

// VisibleBlocks returns visible blocks ordered by position
func (p *Page) VisibleBlocks() []Block {
	p.sortBlocks()
	out := make([]Block, 0, len(p.Blocks))
	for _, b := range p.Blocks {
		if b.Visible {
			out = append(out, b)
		}
	}
	return out
}

// NewTranslation copies the page and its blocks into another language.
// The copy starts as a draft linked to this page.
func (p *Page) NewTranslation(languageCode, title, slug string) (*Page, error) {
	if p.IsTranslation() {
		return nil, shared.NewDomainError("INVALID_BASE_PAGE", "Translations must be created from the base page")
	}
	if languageCode == p.LanguageCode {
		return nil, shared.NewDomainError("INVALID_LANGUAGE", "Translation language must differ from the base page")
	}
	if title == "" {
		title = p.Title
	}
	if slug == "" {
		slug = p.Slug
	}
	t, err := NewPage(title, slug, languageCode)
	if err != nil {
		return nil, err
	}
	baseID := p.ID
	t.TranslationOf = &baseID
	t.SEO = p.SEO

	p.sortBlocks()
	for i := range p.Blocks {
		t.Blocks = append(t.Blocks, p.Blocks[i].translateTo(t.ID))
	}
	return t, nil
}

// MergeTranslatedBlock updates a block of this translation. Only translatable
// fields of incoming are taken; everything else comes from the base block.
func (p *Page) MergeTranslatedBlock(id uuid.UUID, base *Block, incoming map[string]interface{}) (*Block, error) {
	if !p.IsTranslation() {
		return nil, shared.NewDomainError("NOT_A_TRANSLATION", "Page is not a translation")
	}
	if base == nil || base.PageID != *p.TranslationOf {
		return nil, shared.NewDomainError("INVALID_BASE_BLOCK", "Base block does not belong to the base page")
	}
	b, err := p.Block(id)
	if err != nil {
		return nil, err
	}
	if b.Type != base.Type {
		return nil, shared.NewDomainError("INVALID_BASE_BLOCK", "Base block type does not match")
	}
	merged := Merge(base.Content, incoming)
	if err := ValidateBlockContent(b.Type, merged); err != nil {
		return nil, err
	}
	b.Content = merged
	b.touch()
	p.touch()
	return b, nil
}

func (p *Page) sortBlocks() {
	sort.SliceStable(p.Blocks, func(i, j int) bool {
		return p.Blocks[i].Position < p.Blocks[j].Position
	})
}

func (p *Page) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

func validateTitle(title string) error {
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Page title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Page title cannot exceed 200 characters")
	}
	return nil
}
