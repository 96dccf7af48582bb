package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/application/favorite"
)

// FavoriteHandler manages the signed-in customer's saved products
type FavoriteHandler struct {
	BaseHandler
	favoriteService *favorite.Service
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favoriteService *favorite.Service) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// List godoc
// @Summary      My favorites
// @Tags         store-favorites
// @Produce      json
// @Param        page      query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]favorite.FavoriteResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /store/favorites [get]
func (h *FavoriteHandler) List(c *gin.Context) {
	customerID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var q favorite.ListFavoritesQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.favoriteService.List(c.Request.Context(), customerID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Add godoc
// @Summary      Save a product
// @Description  Saving an already saved product is a no-op
// @Tags         store-favorites
// @Accept       json
// @Produce      json
// @Param        request body favorite.AddFavoriteRequest true "Product"
// @Success      201 {object} dto.Response{data=favorite.FavoriteResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/favorites [post]
func (h *FavoriteHandler) Add(c *gin.Context) {
	customerID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req favorite.AddFavoriteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	fav, err := h.favoriteService.Add(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, fav)
}

// Remove godoc
// @Summary      Remove a saved product
// @Tags         store-favorites
// @Param        product_id path string true "Product ID"
// @Success      204
// @Security     BearerAuth
// @Router       /store/favorites/{product_id} [delete]
func (h *FavoriteHandler) Remove(c *gin.Context) {
	customerID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	productID, ok := h.paramUUID(c, "product_id", "product")
	if !ok {
		return
	}
	if err := h.favoriteService.Remove(c.Request.Context(), customerID, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Contains godoc
// @Summary      Which products are saved
// @Tags         store-favorites
// @Accept       json
// @Produce      json
// @Param        request body favorite.ContainsRequest true "Product IDs"
// @Success      200 {object} dto.Response{data=map[string]bool}
// @Security     BearerAuth
// @Router       /store/favorites/contains [post]
func (h *FavoriteHandler) Contains(c *gin.Context) {
	customerID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req favorite.ContainsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	saved, err := h.favoriteService.Contains(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, saved)
}
