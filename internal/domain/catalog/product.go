package catalog

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

// IsValid reports whether s is a known product status
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusActive, ProductStatusArchived:
		return true
	}
	return false
}

const (
	DefaultCurrency = "USD"
	MaxImages       = 20
)

var (
	skuPattern      = regexp.MustCompile(`^[A-Z0-9_-]{1,50}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Product is the aggregate root of the catalog
type Product struct {
	shared.BaseAggregateRoot
	SKU            string            `gorm:"column:sku;type:varchar(50);not null;uniqueIndex"`
	Name           string            `gorm:"type:varchar(200);not null"`
	Slug           string            `gorm:"type:varchar(200);not null;uniqueIndex"`
	Description    string            `gorm:"type:text"`
	Category       string            `gorm:"type:varchar(100);index"`
	Price          decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	CompareAtPrice *decimal.Decimal  `gorm:"type:decimal(18,2)"`
	Currency       string            `gorm:"type:char(3);not null;default:'USD'"`
	Stock          int               `gorm:"not null;default:0"`
	Status         ProductStatus     `gorm:"type:varchar(20);not null;default:'draft'"`
	Featured       bool              `gorm:"not null;default:false"`
	Images         shared.StringList `gorm:"type:jsonb"`
	Attributes     shared.JSONMap    `gorm:"type:jsonb"`
	RatingAverage  decimal.Decimal   `gorm:"type:decimal(3,2);not null;default:0"`
	ReviewCount    int               `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a draft product. The slug is derived from the name.
func NewProduct(sku, name string, price decimal.Decimal) (*Product, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	slug := shared.Slugify(name)
	if slug == "" {
		slug = strings.ToLower(sku)
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              strings.TrimSpace(name),
		Slug:              slug,
		Price:             price.Round(2),
		Currency:          DefaultCurrency,
		Status:            ProductStatusDraft,
		Images:            shared.StringList{},
		Attributes:        shared.JSONMap{},
		RatingAverage:     decimal.Zero,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))
	return product, nil
}

// Update changes the descriptive fields of the product
func (p *Product) Update(name, description, category string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if len(category) > 100 {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 100 characters")
	}

	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.Category = strings.TrimSpace(category)
	p.touch()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// SetSlug sets an explicit slug
func (p *Product) SetSlug(slug string) error {
	if !shared.IsValidSlug(slug) {
		return shared.NewDomainError("INVALID_SLUG", "Slug may only contain lowercase letters, numbers and single hyphens")
	}
	p.Slug = slug
	p.touch()
	return nil
}

// SetPricing sets price, optional compare-at price and currency.
// Active products must keep a positive price.
func (p *Product) SetPricing(price decimal.Decimal, compareAt *decimal.Decimal, currency string) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if p.Status == ProductStatusActive && !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Active products must have a positive price")
	}
	if compareAt != nil && !compareAt.GreaterThan(price) {
		return shared.NewDomainError("INVALID_PRICE", "Compare-at price must be greater than price")
	}
	if currency == "" {
		currency = p.Currency
	}
	currency = strings.ToUpper(currency)
	if !currencyPattern.MatchString(currency) {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO 4217 code")
	}

	oldPrice := p.Price
	p.Price = price.Round(2)
	if compareAt != nil {
		c := compareAt.Round(2)
		p.CompareAtPrice = &c
	} else {
		p.CompareAtPrice = nil
	}
	p.Currency = currency
	p.touch()

	if !oldPrice.Equal(p.Price) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))
	}
	return nil
}

// SetImages replaces the ordered image list
func (p *Product) SetImages(images []string) error {
	if len(images) > MaxImages {
		return shared.NewDomainError("TOO_MANY_IMAGES", "A product can have at most 20 images")
	}
	cleaned := make(shared.StringList, 0, len(images))
	for _, img := range images {
		img = strings.TrimSpace(img)
		if img == "" {
			continue
		}
		cleaned = append(cleaned, img)
	}
	p.Images = cleaned
	p.touch()
	return nil
}

// SetAttributes replaces the free-form attribute object
func (p *Product) SetAttributes(attrs map[string]interface{}) {
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	p.Attributes = shared.JSONMap(attrs).Clone()
	p.touch()
}

// SetFeatured toggles the featured flag
func (p *Product) SetFeatured(featured bool) {
	p.Featured = featured
	p.touch()
}

// SetStock sets the on-hand quantity
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	old := p.Stock
	p.Stock = stock
	p.touch()
	if old != stock {
		p.AddDomainEvent(NewProductStockChangedEvent(p, old))
	}
	return nil
}

// AdjustStock applies a relative change to stock
func (p *Product) AdjustStock(delta int) error {
	if p.Stock+delta < 0 {
		return shared.ErrInsufficientStock
	}
	return p.SetStock(p.Stock + delta)
}

// Activate publishes the product to the storefront
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	if p.Status == ProductStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Archived products must be restored to draft before activation")
	}
	if !p.Price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Active products must have a positive price")
	}
	p.changeStatus(ProductStatusActive)
	return nil
}

// Archive hides the product from the storefront
func (p *Product) Archive() error {
	if p.Status == ProductStatusArchived {
		return shared.NewDomainError("ALREADY_ARCHIVED", "Product is already archived")
	}
	p.changeStatus(ProductStatusArchived)
	return nil
}

// RestoreToDraft moves an archived or active product back to draft
func (p *Product) RestoreToDraft() error {
	if p.Status == ProductStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Product is already a draft")
	}
	p.changeStatus(ProductStatusDraft)
	return nil
}

// ApplyRating stores the aggregated review rating
func (p *Product) ApplyRating(average decimal.Decimal, count int) {
	if count <= 0 {
		average = decimal.Zero
		count = 0
	}
	p.RatingAverage = average.Round(2)
	p.ReviewCount = count
	p.UpdatedAt = time.Now()
}

// IsActive returns true if the product is visible on the storefront
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// IsPurchasable reports whether qty units can be ordered
func (p *Product) IsPurchasable(qty int) bool {
	return p.IsActive() && qty > 0 && p.Stock >= qty
}

// OnSale reports whether a compare-at price is set above the price
func (p *Product) OnSale() bool {
	return p.CompareAtPrice != nil && p.CompareAtPrice.GreaterThan(p.Price)
}

func (p *Product) changeStatus(to ProductStatus) {
	from := p.Status
	p.Status = to
	p.touch()
	p.AddDomainEvent(NewProductStatusChangedEvent(p, from, to))
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if !skuPattern.MatchString(sku) {
		return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, underscores and hyphens (max 50)")
	}
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

// ProductSummary is the compact projection used by orders and favorites
type ProductSummary struct {
	ID       uuid.UUID       `json:"id"`
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Image    string          `json:"image,omitempty"`
	InStock  bool            `json:"in_stock"`
}

// Summary returns the compact projection of the product
func (p *Product) Summary() ProductSummary {
	s := ProductSummary{
		ID:       p.ID,
		SKU:      p.SKU,
		Name:     p.Name,
		Slug:     p.Slug,
		Price:    p.Price,
		Currency: p.Currency,
		InStock:  p.Stock > 0,
	}
	if len(p.Images) > 0 {
		s.Image = p.Images[0]
	}
	return s
}
