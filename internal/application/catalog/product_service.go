package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxSlugAttempts = 50

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService. eventPublisher may be nil.
func NewProductService(productRepo catalog.ProductRepository, eventPublisher shared.EventPublisher, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:    productRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create creates a new product, optionally activating it right away
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	exists, err := s.productRepo.ExistsBySKU(ctx, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
	}

	product, err := catalog.NewProduct(req.SKU, req.Name, req.Price)
	if err != nil {
		return nil, err
	}
	if err := product.Update(req.Name, req.Description, req.Category); err != nil {
		return nil, err
	}
	if err := product.SetPricing(req.Price, req.CompareAtPrice, req.Currency); err != nil {
		return nil, err
	}
	if err := product.SetStock(req.Stock); err != nil {
		return nil, err
	}
	if err := product.SetImages(req.Images); err != nil {
		return nil, err
	}
	product.SetAttributes(req.Attributes)
	product.SetFeatured(req.Featured)

	if req.Slug != "" {
		if err := s.assignExplicitSlug(ctx, product, req.Slug); err != nil {
			return nil, err
		}
	} else if err := s.assignUniqueSlug(ctx, product, product.Slug); err != nil {
		return nil, err
	}

	if req.Activate {
		if err := product.Activate(); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetBySlug retrieves a product by slug. With storefront set, drafts and
// archived products are reported as not found.
func (s *ProductService) GetBySlug(ctx context.Context, slug string, storefront bool) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		return nil, err
	}
	if storefront && !product.IsActive() {
		return nil, shared.ErrNotFound
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List returns a page of products. The storefront only ever sees active ones.
func (s *ProductService) List(ctx context.Context, filter ProductListFilter, storefront bool) (*shared.Paginated[ProductResponse], error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Search),
	}.Normalize(100)
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "created_at"
	}

	if storefront {
		domainFilter.Filters["status"] = string(catalog.ProductStatusActive)
	} else if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.Featured != nil {
		domainFilter.Filters["featured"] = *filter.Featured
	}
	if filter.MinPrice != nil {
		domainFilter.Filters["min_price"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		domainFilter.Filters["max_price"] = *filter.MaxPrice
	}
	if filter.InStock {
		domainFilter.Filters["in_stock"] = true
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToProductResponses(products), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies a partial update
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil || req.Category != nil {
		name, description, category := product.Name, product.Description, product.Category
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if req.Category != nil {
			category = *req.Category
		}
		if err := product.Update(name, description, category); err != nil {
			return nil, err
		}
	}

	if req.Slug != nil && *req.Slug != product.Slug {
		if err := s.assignExplicitSlug(ctx, product, *req.Slug); err != nil {
			return nil, err
		}
	}

	if req.Price != nil || req.CompareAtPrice != nil || req.ClearCompareAt || req.Currency != nil {
		price := product.Price
		if req.Price != nil {
			price = *req.Price
		}
		compareAt := product.CompareAtPrice
		if req.CompareAtPrice != nil {
			compareAt = req.CompareAtPrice
		}
		if req.ClearCompareAt {
			compareAt = nil
		}
		currency := ""
		if req.Currency != nil {
			currency = *req.Currency
		}
		if err := product.SetPricing(price, compareAt, currency); err != nil {
			return nil, err
		}
	}

	if req.Stock != nil {
		if err := product.SetStock(*req.Stock); err != nil {
			return nil, err
		}
	}
	if req.Featured != nil {
		product.SetFeatured(*req.Featured)
	}
	if req.Images != nil {
		if err := product.SetImages(*req.Images); err != nil {
			return nil, err
		}
	}
	if req.Attributes != nil {
		product.SetAttributes(*req.Attributes)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publishEvents(ctx, catalog.NewProductDeletedEvent(product))
	return nil
}

// Activate publishes a product to the storefront
func (s *ProductService) Activate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, id, (*catalog.Product).Activate)
}

// Archive hides a product from the storefront
func (s *ProductService) Archive(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, id, (*catalog.Product).Archive)
}

// RestoreToDraft moves a product back to draft
func (s *ProductService) RestoreToDraft(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, id, (*catalog.Product).RestoreToDraft)
}

// AdjustStock applies delta atomically in the database
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*ProductResponse, error) {
	if delta == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Stock delta cannot be zero")
	}
	if err := s.productRepo.AdjustStock(ctx, id, delta); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ApplyRating stores the aggregated review rating of a product
func (s *ProductService) ApplyRating(ctx context.Context, id uuid.UUID, average decimal.Decimal, count int) error {
	if count < 0 || average.IsNegative() || average.GreaterThan(decimal.NewFromInt(5)) {
		return shared.NewDomainError("INVALID_RATING", "Rating average must be between 0 and 5")
	}
	if count == 0 {
		average = decimal.Zero
	}
	return s.productRepo.UpdateRating(ctx, id, average.Round(2), count)
}

// Categories lists the categories in use
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.productRepo.Categories(ctx)
}

func (s *ProductService) changeStatus(ctx context.Context, id uuid.UUID, transition func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := transition(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

func (s *ProductService) assignExplicitSlug(ctx context.Context, product *catalog.Product, slug string) error {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if err := product.SetSlug(slug); err != nil {
		return err
	}
	taken, err := s.productRepo.ExistsBySlug(ctx, slug, &product.ID)
	if err != nil {
		return err
	}
	if taken {
		return shared.NewDomainError("ALREADY_EXISTS", "Product with this slug already exists")
	}
	return nil
}

// assignUniqueSlug appends -2, -3, ... to base until it is free
func (s *ProductService) assignUniqueSlug(ctx context.Context, product *catalog.Product, base string) error {
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := s.productRepo.ExistsBySlug(ctx, candidate, &product.ID)
		if err != nil {
			return err
		}
		if !taken {
			return product.SetSlug(candidate)
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return shared.NewDomainError("ALREADY_EXISTS", "Could not derive a unique slug, set one explicitly")
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	s.publishEvents(ctx, product.GetDomainEvents()...)
	product.ClearDomainEvents()
}

func (s *ProductService) publishEvents(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish product events", zap.Error(err))
	}
}
