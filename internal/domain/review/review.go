package review

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// Status is the moderation state of a review
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusSpam     Status = "spam"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusSpam:
		return true
	}
	return false
}

const (
	MinBodyLength = 10
	MaxBodyLength = 5000
)

// Review is a customer's rating of a product
type Review struct {
	shared.BaseAggregateRoot
	ProductID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	CustomerID       *uuid.UUID `gorm:"type:uuid;index"`
	AuthorName       string     `gorm:"type:varchar(100);not null"`
	AuthorEmail      string     `gorm:"type:varchar(255);not null"`
	Rating           int        `gorm:"not null"`
	Title            string     `gorm:"type:varchar(200)"`
	Body             string     `gorm:"type:text;not null"`
	Status           Status     `gorm:"type:varchar(20);not null;default:'pending';index"`
	ModerationNote   string     `gorm:"type:varchar(1000)"`
	ModeratedBy      string     `gorm:"type:varchar(255)"`
	ModeratedAt      *time.Time
	AdminReply       string `gorm:"type:text"`
	RepliedAt        *time.Time
	VerifiedPurchase bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Review) TableName() string {
	return "reviews"
}

// Submission holds the storefront input of a review
type Submission struct {
	ProductID   uuid.UUID
	CustomerID  *uuid.UUID
	AuthorName  string
	AuthorEmail string
	Rating      int
	Title       string
	Body        string
	Verified    bool
}

// Submit creates a pending review
func Submit(s Submission) (*Review, error) {
	if s.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if s.Rating < 1 || s.Rating > 5 {
		return nil, shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	name := strings.TrimSpace(s.AuthorName)
	if name == "" || utf8.RuneCountInString(name) > 100 {
		return nil, shared.NewDomainError("INVALID_AUTHOR", "Author name is required and cannot exceed 100 characters")
	}
	email := strings.ToLower(strings.TrimSpace(s.AuthorEmail))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Author email is invalid")
	}
	title := strings.TrimSpace(s.Title)
	if utf8.RuneCountInString(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	body := strings.TrimSpace(s.Body)
	if n := utf8.RuneCountInString(body); n < MinBodyLength || n > MaxBodyLength {
		return nil, shared.NewDomainError("INVALID_BODY", "Review text must be between 10 and 5000 characters")
	}

	r := &Review{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         s.ProductID,
		CustomerID:        s.CustomerID,
		AuthorName:        name,
		AuthorEmail:       email,
		Rating:            s.Rating,
		Title:             title,
		Body:              body,
		Status:            StatusPending,
		VerifiedPurchase:  s.Verified,
	}
	r.AddDomainEvent(NewReviewSubmittedEvent(r))
	return r, nil
}

// Approve publishes the review
func (r *Review) Approve(moderator, note string) error {
	return r.moderate(StatusApproved, moderator, note)
}

// Reject hides the review. A note is required.
func (r *Review) Reject(moderator, note string) error {
	if strings.TrimSpace(note) == "" {
		return shared.NewDomainError("NOTE_REQUIRED", "A moderation note is required to reject a review")
	}
	return r.moderate(StatusRejected, moderator, note)
}

// MarkSpam flags the review as spam
func (r *Review) MarkSpam(moderator string) error {
	return r.moderate(StatusSpam, moderator, "")
}

func (r *Review) moderate(to Status, moderator, note string) error {
	if r.Status == to {
		return shared.NewDomainError("INVALID_STATE", "Review is already "+string(to))
	}
	from := r.Status
	now := time.Now()
	r.Status = to
	r.ModeratedBy = moderator
	r.ModeratedAt = &now
	r.ModerationNote = strings.TrimSpace(note)
	r.touch()
	r.AddDomainEvent(NewReviewModeratedEvent(r, from))
	return nil
}

// Reply sets the public shop reply. Only approved reviews can be answered.
func (r *Review) Reply(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return shared.NewDomainError("INVALID_REPLY", "Reply cannot be empty")
	}
	if utf8.RuneCountInString(text) > MaxBodyLength {
		return shared.NewDomainError("INVALID_REPLY", "Reply cannot exceed 5000 characters")
	}
	if r.Status != StatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Only approved reviews can be replied to")
	}
	now := time.Now()
	r.AdminReply = text
	r.RepliedAt = &now
	r.touch()
	return nil
}

// MarkDeleted raises the deletion event before the row is removed
func (r *Review) MarkDeleted() {
	r.AddDomainEvent(NewReviewDeletedEvent(r))
}

// IsApproved reports whether the review is public
func (r *Review) IsApproved() bool {
	return r.Status == StatusApproved
}

func (r *Review) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// Summary aggregates the approved reviews of a product
type Summary struct {
	ProductID    uuid.UUID   `json:"product_id"`
	Count        int         `json:"count"`
	Average      float64     `json:"average"`
	Distribution map[int]int `json:"distribution"`
}

// NewSummary builds a summary from a rating → count distribution
func NewSummary(productID uuid.UUID, distribution map[int]int) Summary {
	s := Summary{ProductID: productID, Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	total := 0
	for rating, n := range distribution {
		if rating < 1 || rating > 5 || n <= 0 {
			continue
		}
		s.Distribution[rating] = n
		s.Count += n
		total += rating * n
	}
	if s.Count > 0 {
		s.Average = float64(total) / float64(s.Count)
	}
	return s
}
