package review

import (
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

const (
	AggregateTypeReview = "Review"

	EventTypeReviewSubmitted = "ReviewSubmitted"
	EventTypeReviewModerated = "ReviewModerated"
	EventTypeReviewDeleted   = "ReviewDeleted"
)

// ReviewSubmittedEvent is raised when a customer submits a review
type ReviewSubmittedEvent struct {
	shared.BaseDomainEvent
	ReviewID  uuid.UUID `json:"review_id"`
	ProductID uuid.UUID `json:"product_id"`
	Rating    int       `json:"rating"`
}

// NewReviewSubmittedEvent creates a ReviewSubmittedEvent
func NewReviewSubmittedEvent(r *Review) *ReviewSubmittedEvent {
	return &ReviewSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewSubmitted, AggregateTypeReview, r.ID),
		ReviewID:        r.ID,
		ProductID:       r.ProductID,
		Rating:          r.Rating,
	}
}

// ReviewModeratedEvent is raised on approve, reject and spam
type ReviewModeratedEvent struct {
	shared.BaseDomainEvent
	ReviewID   uuid.UUID `json:"review_id"`
	ProductID  uuid.UUID `json:"product_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	Moderator  string    `json:"moderator"`
}

// NewReviewModeratedEvent creates a ReviewModeratedEvent
func NewReviewModeratedEvent(r *Review, from Status) *ReviewModeratedEvent {
	return &ReviewModeratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewModerated, AggregateTypeReview, r.ID),
		ReviewID:        r.ID,
		ProductID:       r.ProductID,
		FromStatus:      from,
		ToStatus:        r.Status,
		Moderator:       r.ModeratedBy,
	}
}

// AffectsRating reports whether the product's public rating changes
func (e *ReviewModeratedEvent) AffectsRating() bool {
	return e.FromStatus == StatusApproved || e.ToStatus == StatusApproved
}

// ReviewDeletedEvent is raised when a review is removed
type ReviewDeletedEvent struct {
	shared.BaseDomainEvent
	ReviewID    uuid.UUID `json:"review_id"`
	ProductID   uuid.UUID `json:"product_id"`
	WasApproved bool      `json:"was_approved"`
}

// NewReviewDeletedEvent creates a ReviewDeletedEvent
func NewReviewDeletedEvent(r *Review) *ReviewDeletedEvent {
	return &ReviewDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewDeleted, AggregateTypeReview, r.ID),
		ReviewID:        r.ID,
		ProductID:       r.ProductID,
		WasApproved:     r.Status == StatusApproved,
	}
}
