package review

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/review"
)

// Reviewer is the signed-in customer submitting a review
type Reviewer struct {
	ID    uuid.UUID
	Email string
	Name  string
}

// SubmitReviewRequest is the storefront review form. Author fields default to
// the signed-in customer.
type SubmitReviewRequest struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	AuthorName  string    `json:"author_name" binding:"omitempty,max=100"`
	AuthorEmail string    `json:"author_email" binding:"omitempty,email,max=255"`
	Rating      int       `json:"rating" binding:"required,min=1,max=5"`
	Title       string    `json:"title" binding:"omitempty,max=200"`
	Body        string    `json:"body" binding:"required,min=10,max=5000"`
}

// ModerateRequest carries an optional moderation note
type ModerateRequest struct {
	Note string `json:"note" binding:"omitempty,max=1000"`
}

// RejectRequest requires a note
type RejectRequest struct {
	Note string `json:"note" binding:"required,max=1000"`
}

// ReplyRequest sets the public shop reply
type ReplyRequest struct {
	Reply string `json:"reply" binding:"required,max=5000"`
}

// BulkAction is what BulkModerate does to every review
type BulkAction string

const (
	BulkApprove BulkAction = "approve"
	BulkReject  BulkAction = "reject"
)

// BulkModerateRequest approves or rejects many reviews
type BulkModerateRequest struct {
	IDs    []uuid.UUID `json:"ids" binding:"required,min=1,max=100"`
	Action BulkAction  `json:"action" binding:"required,oneof=approve reject"`
	Note   string      `json:"note" binding:"omitempty,max=1000"`
}

// BulkModerateResult reports per-review outcomes
type BulkModerateResult struct {
	Succeeded []uuid.UUID       `json:"succeeded"`
	Failed    map[string]string `json:"failed"`
}

// ReviewListFilter holds the admin list query parameters
type ReviewListFilter struct {
	Search    string     `form:"search"`
	Status    string     `form:"status" binding:"omitempty,oneof=pending approved rejected spam"`
	ProductID *uuid.UUID `form:"product_id"`
	Rating    int        `form:"rating" binding:"omitempty,min=1,max=5"`
	Verified  *bool      `form:"verified"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductReviewsQuery holds the storefront list parameters
type ProductReviewsQuery struct {
	Rating   int    `form:"rating" binding:"omitempty,min=1,max=5"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=50"`
	Sort     string `form:"sort" binding:"omitempty,oneof=newest highest lowest"`
}

// ReviewResponse is the admin view of a review
type ReviewResponse struct {
	ID               uuid.UUID  `json:"id"`
	ProductID        uuid.UUID  `json:"product_id"`
	CustomerID       *uuid.UUID `json:"customer_id,omitempty"`
	AuthorName       string     `json:"author_name"`
	AuthorEmail      string     `json:"author_email"`
	Rating           int        `json:"rating"`
	Title            string     `json:"title"`
	Body             string     `json:"body"`
	Status           string     `json:"status"`
	ModerationNote   string     `json:"moderation_note,omitempty"`
	ModeratedBy      string     `json:"moderated_by,omitempty"`
	ModeratedAt      *time.Time `json:"moderated_at,omitempty"`
	AdminReply       string     `json:"admin_reply,omitempty"`
	RepliedAt        *time.Time `json:"replied_at,omitempty"`
	VerifiedPurchase bool       `json:"verified_purchase"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// PublicReviewResponse is the storefront view; it never exposes the email
type PublicReviewResponse struct {
	ID               uuid.UUID  `json:"id"`
	AuthorName       string     `json:"author_name"`
	Rating           int        `json:"rating"`
	Title            string     `json:"title"`
	Body             string     `json:"body"`
	AdminReply       string     `json:"admin_reply,omitempty"`
	RepliedAt        *time.Time `json:"replied_at,omitempty"`
	VerifiedPurchase bool       `json:"verified_purchase"`
	CreatedAt        time.Time  `json:"created_at"`
}

// SummaryResponse aggregates the approved reviews of a product
type SummaryResponse struct {
	ProductID    uuid.UUID   `json:"product_id"`
	Count        int         `json:"count"`
	Average      float64     `json:"average"`
	Distribution map[int]int `json:"distribution"`
}

// ToReviewResponse converts a domain review to the admin view
func ToReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:               r.ID,
		ProductID:        r.ProductID,
		CustomerID:       r.CustomerID,
		AuthorName:       r.AuthorName,
		AuthorEmail:      r.AuthorEmail,
		Rating:           r.Rating,
		Title:            r.Title,
		Body:             r.Body,
		Status:           string(r.Status),
		ModerationNote:   r.ModerationNote,
		ModeratedBy:      r.ModeratedBy,
		ModeratedAt:      r.ModeratedAt,
		AdminReply:       r.AdminReply,
		RepliedAt:        r.RepliedAt,
		VerifiedPurchase: r.VerifiedPurchase,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// ToPublicReviewResponse converts a domain review to the storefront view
func ToPublicReviewResponse(r *review.Review) PublicReviewResponse {
	return PublicReviewResponse{
		ID:               r.ID,
		AuthorName:       r.AuthorName,
		Rating:           r.Rating,
		Title:            r.Title,
		Body:             r.Body,
		AdminReply:       r.AdminReply,
		RepliedAt:        r.RepliedAt,
		VerifiedPurchase: r.VerifiedPurchase,
		CreatedAt:        r.CreatedAt,
	}
}
