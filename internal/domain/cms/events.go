package cms

import (
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

const (
	AggregateTypePage = "Page"

	EventTypePagePublished   = "PagePublished"
	EventTypePageUnpublished = "PageUnpublished"
)

// PagePublishedEvent is raised when a page goes live
type PagePublishedEvent struct {
	shared.BaseDomainEvent
	PageID       uuid.UUID `json:"page_id"`
	Slug         string    `json:"slug"`
	LanguageCode string    `json:"language_code"`
}

// NewPagePublishedEvent creates a PagePublishedEvent
func NewPagePublishedEvent(p *Page) *PagePublishedEvent {
	return &PagePublishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePagePublished, AggregateTypePage, p.ID),
		PageID:          p.ID,
		Slug:            p.Slug,
		LanguageCode:    p.LanguageCode,
	}
}

// PageUnpublishedEvent is raised when a page is taken offline
type PageUnpublishedEvent struct {
	shared.BaseDomainEvent
	PageID       uuid.UUID `json:"page_id"`
	Slug         string    `json:"slug"`
	LanguageCode string    `json:"language_code"`
}

// NewPageUnpublishedEvent creates a PageUnpublishedEvent
func NewPageUnpublishedEvent(p *Page) *PageUnpublishedEvent {
	return &PageUnpublishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePageUnpublished, AggregateTypePage, p.ID),
		PageID:          p.ID,
		Slug:            p.Slug,
		LanguageCode:    p.LanguageCode,
	}
}
