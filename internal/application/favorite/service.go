package favorite

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/favorite"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductLookup loads products for favorites
type ProductLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error)
}

// Service manages a customer's saved products
type Service struct {
	repo     favorite.Repository
	products ProductLookup
	logger   *zap.Logger
}

// NewService creates a new favorite service
func NewService(repo favorite.Repository, products ProductLookup, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, products: products, logger: logger}
}

// Add saves a product. Adding an already saved product is a no-op.
func (s *Service) Add(ctx context.Context, customerID uuid.UUID, req AddFavoriteRequest) (*FavoriteResponse, error) {
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

	existing, err := s.repo.Find(ctx, customerID, product.ID)
	if err == nil {
		return toResponse(existing, product), nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	count, err := s.repo.CountByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if count >= favorite.MaxPerCustomer {
		return nil, shared.NewDomainError("FAVORITES_LIMIT", "Favorites list is full")
	}

	fav, err := favorite.NewFavorite(customerID, product.ID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, fav); err != nil {
		return nil, err
	}
	s.logger.Debug("Favorite added",
		zap.String("customer_id", customerID.String()),
		zap.String("product_id", product.ID.String()))
	return toResponse(fav, product), nil
}

// Remove forgets a product. Removing an unsaved product is a no-op.
func (s *Service) Remove(ctx context.Context, customerID, productID uuid.UUID) error {
	err := s.repo.Delete(ctx, customerID, productID)
	if err != nil && !shared.IsNotFound(err) {
		return err
	}
	return nil
}

// List returns saved products newest first with their summaries
func (s *Service) List(ctx context.Context, customerID uuid.UUID, query ListFavoritesQuery) (*shared.Paginated[FavoriteResponse], error) {
	f := shared.Filter{Page: query.Page, PageSize: query.PageSize}.Normalize(100)

	favs, total, err := s.repo.ListByCustomer(ctx, customerID, f.Page, f.PageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(favs))
	for i, fav := range favs {
		ids[i] = fav.ProductID
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(ids))
	if len(ids) > 0 {
		products, err := s.products.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range products {
			byID[products[i].ID] = &products[i]
		}
	}

	items := make([]FavoriteResponse, len(favs))
	for i := range favs {
		items[i] = *toResponse(&favs[i], byID[favs[i].ProductID])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Contains reports which of the given products the customer saved
func (s *Service) Contains(ctx context.Context, customerID uuid.UUID, req ContainsRequest) (map[uuid.UUID]bool, error) {
	saved, err := s.repo.ContainsAny(ctx, customerID, req.ProductIDs)
	if err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]bool, len(req.ProductIDs))
	for _, id := range req.ProductIDs {
		result[id] = saved[id]
	}
	return result, nil
}

func toResponse(fav *favorite.Favorite, product *catalog.Product) *FavoriteResponse {
	resp := &FavoriteResponse{ProductID: fav.ProductID, CreatedAt: fav.CreatedAt}
	if product != nil && product.IsActive() {
		summary := product.Summary()
		resp.Product = &summary
		resp.Available = true
	}
	return resp
}
