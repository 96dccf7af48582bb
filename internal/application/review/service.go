package review

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var reviewSortFields = map[string]bool{
	"created_at": true, "updated_at": true, "rating": true, "status": true,
}

// ProductFinder loads the reviewed product
type ProductFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// PurchaseChecker reports whether a customer received a product.
// order.Repository satisfies it.
type PurchaseChecker interface {
	HasDeliveredProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
}

// Service handles review submission and moderation
type Service struct {
	repo           review.Repository
	products       ProductFinder
	orders         PurchaseChecker
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new review service
func NewService(
	repo review.Repository,
	products ProductFinder,
	orders PurchaseChecker,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:           repo,
		products:       products,
		orders:         orders,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Submit records a pending review. Guests may review; a signed-in customer
// reviews each product once and is marked verified after a delivered order.
func (s *Service) Submit(ctx context.Context, reviewer *Reviewer, req SubmitReviewRequest) (*PublicReviewResponse, error) {
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available")
		}
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available")
	}

	sub := review.Submission{
		ProductID:   product.ID,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Rating:      req.Rating,
		Title:       req.Title,
		Body:        req.Body,
	}
	if reviewer != nil {
		exists, err := s.repo.ExistsForCustomer(ctx, reviewer.ID, product.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "You have already reviewed this product")
		}
		verified, err := s.orders.HasDeliveredProduct(ctx, reviewer.ID, product.ID)
		if err != nil {
			return nil, err
		}
		customerID := reviewer.ID
		sub.CustomerID = &customerID
		sub.Verified = verified
		sub.AuthorEmail = reviewer.Email
		if strings.TrimSpace(sub.AuthorName) == "" {
			sub.AuthorName = reviewer.Name
		}
	}

	r, err := review.Submit(sub)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	s.publish(ctx, r)
	s.logger.Info("Review submitted",
		zap.String("review_id", r.ID.String()),
		zap.String("product_id", r.ProductID.String()),
		zap.Int("rating", r.Rating),
		zap.Bool("verified", r.VerifiedPurchase))

	response := ToPublicReviewResponse(r)
	return &response, nil
}

// List returns reviews for moderation
func (s *Service) List(ctx context.Context, filter ReviewListFilter) (*shared.Paginated[ReviewResponse], error) {
	orderBy := filter.OrderBy
	if !reviewSortFields[orderBy] {
		orderBy = "created_at"
	}
	orderDir := filter.OrderDir
	if orderDir == "" {
		orderDir = "desc"
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   strings.TrimSpace(filter.Search),
		OrderBy:  orderBy,
		OrderDir: orderDir,
	}.Normalize(100)
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.ProductID != nil {
		domainFilter.Filters["product_id"] = *filter.ProductID
	}
	if filter.Rating != 0 {
		domainFilter.Filters["rating"] = filter.Rating
	}
	if filter.Verified != nil {
		domainFilter.Filters["verified"] = *filter.Verified
	}

	reviews, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		items[i] = ToReviewResponse(&reviews[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Get retrieves a review
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ReviewResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToReviewResponse(r)
	return &response, nil
}

// Approve publishes a review
func (s *Service) Approve(ctx context.Context, id uuid.UUID, moderator string, req ModerateRequest) (*ReviewResponse, error) {
	return s.mutate(ctx, id, func(r *review.Review) error {
		return r.Approve(moderator, req.Note)
	})
}

// Reject hides a review with a note
func (s *Service) Reject(ctx context.Context, id uuid.UUID, moderator string, req RejectRequest) (*ReviewResponse, error) {
	return s.mutate(ctx, id, func(r *review.Review) error {
		return r.Reject(moderator, req.Note)
	})
}

// MarkSpam flags a review as spam
func (s *Service) MarkSpam(ctx context.Context, id uuid.UUID, moderator string) (*ReviewResponse, error) {
	return s.mutate(ctx, id, func(r *review.Review) error {
		return r.MarkSpam(moderator)
	})
}

// Reply sets the public shop reply on an approved review
func (s *Service) Reply(ctx context.Context, id uuid.UUID, req ReplyRequest) (*ReviewResponse, error) {
	return s.mutate(ctx, id, func(r *review.Review) error {
		return r.Reply(req.Reply)
	})
}

// Delete removes a review
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	r.MarkDeleted()
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, r)
	return nil
}

// BulkModerate approves or rejects each review independently. Failures are
// reported per id and do not stop the batch.
func (s *Service) BulkModerate(ctx context.Context, moderator string, req BulkModerateRequest) (*BulkModerateResult, error) {
	if req.Action == BulkReject && strings.TrimSpace(req.Note) == "" {
		return nil, shared.NewDomainError("NOTE_REQUIRED", "A moderation note is required to reject reviews")
	}
	if req.Action != BulkApprove && req.Action != BulkReject {
		return nil, shared.NewDomainError("INVALID_ACTION", "Action must be approve or reject")
	}

	reviews, err := s.repo.FindByIDs(ctx, req.IDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*review.Review, len(reviews))
	for i := range reviews {
		byID[reviews[i].ID] = &reviews[i]
	}

	result := &BulkModerateResult{Succeeded: []uuid.UUID{}, Failed: map[string]string{}}
	for _, id := range req.IDs {
		r, ok := byID[id]
		if !ok {
			result.Failed[id.String()] = "review not found"
			continue
		}
		var err error
		if req.Action == BulkApprove {
			err = r.Approve(moderator, req.Note)
		} else {
			err = r.Reject(moderator, req.Note)
		}
		if err == nil {
			err = s.repo.Save(ctx, r)
		}
		if err != nil {
			result.Failed[id.String()] = err.Error()
			r.ClearDomainEvents()
			continue
		}
		s.publish(ctx, r)
		result.Succeeded = append(result.Succeeded, id)
	}

	s.logger.Info("Bulk moderation",
		zap.String("action", string(req.Action)),
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

// ListForProduct returns the approved reviews of a product for the storefront
func (s *Service) ListForProduct(ctx context.Context, productID uuid.UUID, query ProductReviewsQuery) (*shared.Paginated[PublicReviewResponse], error) {
	orderBy, orderDir := "created_at", "desc"
	switch query.Sort {
	case "highest":
		orderBy = "rating"
	case "lowest":
		orderBy, orderDir = "rating", "asc"
	}
	domainFilter := shared.Filter{
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  orderBy,
		OrderDir: orderDir,
	}.Normalize(50)
	domainFilter.Filters["product_id"] = productID
	domainFilter.Filters["status"] = string(review.StatusApproved)
	if query.Rating != 0 {
		domainFilter.Filters["rating"] = query.Rating
	}

	reviews, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]PublicReviewResponse, len(reviews))
	for i := range reviews {
		items[i] = ToPublicReviewResponse(&reviews[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Summary returns the average and distribution of approved reviews
func (s *Service) Summary(ctx context.Context, productID uuid.UUID) (*SummaryResponse, error) {
	dist, err := s.repo.RatingDistribution(ctx, productID)
	if err != nil {
		return nil, err
	}
	sum := review.NewSummary(productID, dist)
	return &SummaryResponse{
		ProductID:    sum.ProductID,
		Count:        sum.Count,
		Average:      math.Round(sum.Average*100) / 100,
		Distribution: sum.Distribution,
	}, nil
}

func (s *Service) mutate(ctx context.Context, id uuid.UUID, change func(*review.Review) error) (*ReviewResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(r); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	s.publish(ctx, r)

	response := ToReviewResponse(r)
	return &response, nil
}

func (s *Service) publish(ctx context.Context, r *review.Review) {
	events := r.GetDomainEvents()
	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish review events", zap.Error(err))
		}
	}
	r.ClearDomainEvents()
}
