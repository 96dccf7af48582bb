package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	SKU            string                 `json:"sku" binding:"required,min=1,max=50"`
	Name           string                 `json:"name" binding:"required,min=1,max=200"`
	Slug           string                 `json:"slug" binding:"omitempty,max=200"`
	Description    string                 `json:"description" binding:"max=10000"`
	Category       string                 `json:"category" binding:"max=100"`
	Price          decimal.Decimal        `json:"price"`
	CompareAtPrice *decimal.Decimal       `json:"compare_at_price"`
	Currency       string                 `json:"currency" binding:"omitempty,len=3"`
	Stock          int                    `json:"stock" binding:"min=0"`
	Featured       bool                   `json:"featured"`
	Images         []string               `json:"images" binding:"max=20,dive,url"`
	Attributes     map[string]interface{} `json:"attributes"`
	Activate       bool                   `json:"activate"`
}

// UpdateProductRequest is a partial update; nil fields are left unchanged
type UpdateProductRequest struct {
	Name           *string                 `json:"name" binding:"omitempty,min=1,max=200"`
	Slug           *string                 `json:"slug" binding:"omitempty,max=200"`
	Description    *string                 `json:"description" binding:"omitempty,max=10000"`
	Category       *string                 `json:"category" binding:"omitempty,max=100"`
	Price          *decimal.Decimal        `json:"price"`
	CompareAtPrice *decimal.Decimal        `json:"compare_at_price"`
	ClearCompareAt bool                    `json:"clear_compare_at_price"`
	Currency       *string                 `json:"currency" binding:"omitempty,len=3"`
	Stock          *int                    `json:"stock" binding:"omitempty,min=0"`
	Featured       *bool                   `json:"featured"`
	Images         *[]string               `json:"images" binding:"omitempty,max=20,dive,url"`
	Attributes     *map[string]interface{} `json:"attributes"`
}

// AdjustStockRequest applies a relative stock change
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// ProductListFilter holds the list query parameters
type ProductListFilter struct {
	Search   string           `form:"search"`
	Status   string           `form:"status" binding:"omitempty,oneof=draft active archived"`
	Category string           `form:"category"`
	Featured *bool            `form:"featured"`
	MinPrice *decimal.Decimal `form:"min_price"`
	MaxPrice *decimal.Decimal `form:"max_price"`
	InStock  bool             `form:"in_stock"`
	Page     int              `form:"page" binding:"omitempty,min=1"`
	PageSize int              `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string           `form:"order_by"`
	OrderDir string           `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID              `json:"id"`
	SKU            string                 `json:"sku"`
	Name           string                 `json:"name"`
	Slug           string                 `json:"slug"`
	Description    string                 `json:"description"`
	Category       string                 `json:"category"`
	Price          decimal.Decimal        `json:"price"`
	CompareAtPrice *decimal.Decimal       `json:"compare_at_price,omitempty"`
	OnSale         bool                   `json:"on_sale"`
	Currency       string                 `json:"currency"`
	Stock          int                    `json:"stock"`
	Status         string                 `json:"status"`
	Featured       bool                   `json:"featured"`
	Images         []string               `json:"images"`
	Attributes     map[string]interface{} `json:"attributes"`
	RatingAverage  decimal.Decimal        `json:"rating_average"`
	ReviewCount    int                    `json:"review_count"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	Version        int                    `json:"version"`
}

// ToProductResponse converts a domain product to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	attrs := map[string]interface{}(p.Attributes)
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	return ProductResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Category:       p.Category,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		OnSale:         p.OnSale(),
		Currency:       p.Currency,
		Stock:          p.Stock,
		Status:         string(p.Status),
		Featured:       p.Featured,
		Images:         images,
		Attributes:     attrs,
		RatingAverage:  p.RatingAverage,
		ReviewCount:    p.ReviewCount,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}
