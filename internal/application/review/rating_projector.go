package review

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RatingApplier stores the denormalized rating of a product.
// catalog.ProductService satisfies it.
type RatingApplier interface {
	ApplyRating(ctx context.Context, id uuid.UUID, average decimal.Decimal, count int) error
}

// RatingProjector recomputes a product's rating when an approved review
// appears, disappears or changes status
type RatingProjector struct {
	reviews  review.Repository
	products RatingApplier
	logger   *zap.Logger
}

// NewRatingProjector creates a new rating projector
func NewRatingProjector(reviews review.Repository, products RatingApplier, logger *zap.Logger) *RatingProjector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingProjector{reviews: reviews, products: products, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (p *RatingProjector) EventTypes() []string {
	return []string{review.EventTypeReviewModerated, review.EventTypeReviewDeleted}
}

// Handle processes review moderation and deletion events
func (p *RatingProjector) Handle(ctx context.Context, event shared.DomainEvent) error {
	var productID uuid.UUID
	switch e := event.(type) {
	case *review.ReviewModeratedEvent:
		if !e.AffectsRating() {
			return nil
		}
		productID = e.ProductID
	case *review.ReviewDeletedEvent:
		if !e.WasApproved {
			return nil
		}
		productID = e.ProductID
	default:
		p.logger.Error("unexpected event type",
			zap.Strings("expected", p.EventTypes()),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return p.Project(ctx, productID)
}

// Project recomputes and stores the rating of one product
func (p *RatingProjector) Project(ctx context.Context, productID uuid.UUID) error {
	dist, err := p.reviews.RatingDistribution(ctx, productID)
	if err != nil {
		return fmt.Errorf("rating distribution: %w", err)
	}
	sum := review.NewSummary(productID, dist)
	average := decimal.NewFromFloat(sum.Average).Round(2)

	if err := p.products.ApplyRating(ctx, productID, average, sum.Count); err != nil {
		if shared.IsNotFound(err) {
			p.logger.Info("product gone, rating not projected", zap.String("product_id", productID.String()))
			return nil
		}
		return fmt.Errorf("apply rating: %w", err)
	}
	p.logger.Debug("product rating projected",
		zap.String("product_id", productID.String()),
		zap.String("average", average.String()),
		zap.Int("count", sum.Count),
	)
	return nil
}

var _ shared.EventHandler = (*RatingProjector)(nil)
