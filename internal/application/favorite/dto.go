package favorite

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
)

// AddFavoriteRequest saves a product
type AddFavoriteRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// ContainsRequest asks which products are saved
type ContainsRequest struct {
	ProductIDs []uuid.UUID `json:"product_ids" binding:"required,min=1,max=100"`
}

// ListFavoritesQuery holds paging parameters
type ListFavoritesQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// FavoriteResponse is a saved product. Product is nil when the product
// has since been deleted or deactivated.
type FavoriteResponse struct {
	ProductID uuid.UUID               `json:"product_id"`
	CreatedAt time.Time               `json:"created_at"`
	Product   *catalog.ProductSummary `json:"product,omitempty"`
	Available bool                    `json:"available"`
}
