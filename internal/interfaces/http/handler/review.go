package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/identity"
	"github.com/shopfront/backend/internal/application/review"
)

// productRefParam is the product path segment shared by slug and id lookups
const productRefParam = "slug"

// ReviewHandler handles review submission and moderation
type ReviewHandler struct {
	BaseHandler
	reviewService   *review.Service
	customerService *identity.CustomerService
}

// NewReviewHandler creates a new review handler. customerService fills the
// author name of signed-in reviewers and may be nil.
func NewReviewHandler(reviewService *review.Service, customerService *identity.CustomerService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, customerService: customerService}
}

// List godoc
// @Summary      Moderation queue
// @Tags         reviews
// @Produce      json
// @Param        status     query string false "pending, approved, rejected or spam"
// @Param        product_id query string false "Product ID"
// @Param        rating     query int    false "Rating"
// @Param        verified   query bool   false "Verified purchases only"
// @Success      200 {object} dto.Response{data=[]review.ReviewResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	var filter review.ReviewListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.reviewService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Get godoc
// @Summary      Get a review
// @Tags         reviews
// @Produce      json
// @Param        id path string true "Review ID"
// @Success      200 {object} dto.Response{data=review.ReviewResponse}
// @Security     BearerAuth
// @Router       /admin/reviews/{id} [get]
func (h *ReviewHandler) Get(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "review")
	if !ok {
		return
	}
	r, err := h.reviewService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// Approve godoc
// @Summary      Approve a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id      path string                 true  "Review ID"
// @Param        request body review.ModerateRequest false "Note"
// @Success      200 {object} dto.Response{data=review.ReviewResponse}
// @Security     BearerAuth
// @Router       /admin/reviews/{id}/approve [post]
func (h *ReviewHandler) Approve(c *gin.Context) {
	var req review.ModerateRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	h.moderate(c, func(ctx context.Context, id uuid.UUID, moderator string) (*review.ReviewResponse, error) {
		return h.reviewService.Approve(ctx, id, moderator, req)
	})
}

// Reject godoc
// @Summary      Reject a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id      path string               true "Review ID"
// @Param        request body review.RejectRequest true "Note"
// @Success      200 {object} dto.Response{data=review.ReviewResponse}
// @Security     BearerAuth
// @Router       /admin/reviews/{id}/reject [post]
func (h *ReviewHandler) Reject(c *gin.Context) {
	var req review.RejectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.moderate(c, func(ctx context.Context, id uuid.UUID, moderator string) (*review.ReviewResponse, error) {
		return h.reviewService.Reject(ctx, id, moderator, req)
	})
}

// MarkSpam godoc
// @Summary      Flag a review as spam
// @Tags         reviews
// @Param        id path string true "Review ID"
// @Success      200 {object} dto.Response{data=review.ReviewResponse}
// @Security     BearerAuth
// @Router       /admin/reviews/{id}/spam [post]
func (h *ReviewHandler) MarkSpam(c *gin.Context) {
	h.moderate(c, h.reviewService.MarkSpam)
}

// Reply godoc
// @Summary      Reply publicly to a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id      path string              true "Review ID"
// @Param        request body review.ReplyRequest true "Reply"
// @Success      200 {object} dto.Response{data=review.ReviewResponse}
// @Security     BearerAuth
// @Router       /admin/reviews/{id}/reply [put]
func (h *ReviewHandler) Reply(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "review")
	if !ok {
		return
	}
	var req review.ReplyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	r, err := h.reviewService.Reply(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// Delete godoc
// @Summary      Delete a review
// @Tags         reviews
// @Param        id path string true "Review ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "review")
	if !ok {
		return
	}
	if err := h.reviewService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// BulkModerate godoc
// @Summary      Approve or reject many reviews
// @Description  Each review is moderated independently; failures are reported per id
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        request body review.BulkModerateRequest true "Batch"
// @Success      200 {object} dto.Response{data=review.BulkModerateResult}
// @Security     BearerAuth
// @Router       /admin/reviews/bulk-moderate [post]
func (h *ReviewHandler) BulkModerate(c *gin.Context) {
	var req review.BulkModerateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.reviewService.BulkModerate(c.Request.Context(), h.moderator(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Submit godoc
// @Summary      Submit a review
// @Description  Reviews are published after moderation. Guests must give a name and email.
// @Tags         store-reviews
// @Accept       json
// @Produce      json
// @Param        request body review.SubmitReviewRequest true "Review"
// @Success      201 {object} dto.Response{data=review.PublicReviewResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/reviews [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	var req review.SubmitReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}
	r, err := h.reviewService.Submit(c.Request.Context(), h.reviewer(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, r)
}

// ListForProduct godoc
// @Summary      Approved reviews of a product
// @Tags         store-reviews
// @Produce      json
// @Param        slug path  string true  "Product ID"
// @Param        rating query int  false "Rating"
// @Param        sort query string false "newest, highest or lowest"
// @Success      200 {object} dto.Response{data=[]review.PublicReviewResponse,meta=dto.Meta}
// @Router       /store/products/{slug}/reviews [get]
func (h *ReviewHandler) ListForProduct(c *gin.Context) {
	productID, ok := h.paramUUID(c, productRefParam, "product")
	if !ok {
		return
	}
	var q review.ProductReviewsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.reviewService.ListForProduct(c.Request.Context(), productID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Summary godoc
// @Summary      Rating summary of a product
// @Tags         store-reviews
// @Produce      json
// @Param        slug path string true "Product ID"
// @Success      200 {object} dto.Response{data=review.SummaryResponse}
// @Router       /store/products/{slug}/reviews/summary [get]
func (h *ReviewHandler) Summary(c *gin.Context) {
	productID, ok := h.paramUUID(c, productRefParam, "product")
	if !ok {
		return
	}
	summary, err := h.reviewService.Summary(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

func (h *ReviewHandler) moderate(c *gin.Context, change func(context.Context, uuid.UUID, string) (*review.ReviewResponse, error)) {
	id, ok := h.paramUUID(c, "id", "review")
	if !ok {
		return
	}
	r, err := change(c.Request.Context(), id, h.moderator(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

func (h *ReviewHandler) moderator(c *gin.Context) string {
	if claims := getClaims(c); claims != nil {
		return claims.Email
	}
	return "system"
}

// reviewer returns nil for guests
func (h *ReviewHandler) reviewer(c *gin.Context) *review.Reviewer {
	claims := getClaims(c)
	if claims == nil {
		return nil
	}
	customerID, err := claims.GetUserUUID()
	if err != nil {
		return nil
	}
	reviewer := &review.Reviewer{ID: customerID, Email: claims.Email}
	if h.customerService != nil {
		if profile, err := h.customerService.Me(c.Request.Context(), customerID); err == nil {
			reviewer.Name = profile.Name
		}
	}
	return reviewer
}
