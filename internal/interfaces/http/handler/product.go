package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/catalog"
)

// ProductHandler serves the catalog to the dashboard and the storefront
type ProductHandler struct {
	BaseHandler
	productService *catalog.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *catalog.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        search    query string false "Name, SKU or description"
// @Param        status    query string false "draft, active or archived"
// @Param        category  query string false "Category"
// @Param        page      query int    false "Page"
// @Param        page_size query int    false "Page size"
// @Success      200 {object} dto.Response{data=[]catalog.ProductResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	h.list(c, false)
}

// Get godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "product")
	if !ok {
		return
	}
	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateProductRequest true "Product"
// @Success      201 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalog.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                       true "Product ID"
// @Param        request body catalog.UpdateProductRequest true "Changes"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Security     BearerAuth
// @Router       /admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "product")
	if !ok {
		return
	}
	var req catalog.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete a product
// @Tags         products
// @Param        id path string true "Product ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "product")
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Activate godoc
// @Summary      Publish a product on the storefront
// @Tags         products
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Security     BearerAuth
// @Router       /admin/products/{id}/activate [post]
func (h *ProductHandler) Activate(c *gin.Context) {
	h.transition(c, h.productService.Activate)
}

// Archive godoc
// @Summary      Archive a product
// @Tags         products
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Security     BearerAuth
// @Router       /admin/products/{id}/archive [post]
func (h *ProductHandler) Archive(c *gin.Context) {
	h.transition(c, h.productService.Archive)
}

// RestoreToDraft godoc
// @Summary      Move a product back to draft
// @Tags         products
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Security     BearerAuth
// @Router       /admin/products/{id}/draft [post]
func (h *ProductHandler) RestoreToDraft(c *gin.Context) {
	h.transition(c, h.productService.RestoreToDraft)
}

// AdjustStock godoc
// @Summary      Adjust stock
// @Description  Applies a relative change; stock never goes below zero
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                     true "Product ID"
// @Param        request body catalog.AdjustStockRequest true "Delta"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id}/stock [post]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "product")
	if !ok {
		return
	}
	var req catalog.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.productService.AdjustStock(c.Request.Context(), id, req.Delta)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Categories godoc
// @Summary      List product categories
// @Tags         products
// @Produce      json
// @Success      200 {object} dto.Response{data=[]string}
// @Router       /store/products/categories [get]
func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.productService.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// StoreList godoc
// @Summary      Browse products
// @Description  Only active products are listed
// @Tags         store-products
// @Produce      json
// @Param        search    query string false "Search"
// @Param        category  query string false "Category"
// @Param        min_price query string false "Minimum price"
// @Param        max_price query string false "Maximum price"
// @Param        in_stock  query bool   false "Only products in stock"
// @Success      200 {object} dto.Response{data=[]catalog.ProductResponse,meta=dto.Meta}
// @Router       /store/products [get]
func (h *ProductHandler) StoreList(c *gin.Context) {
	h.list(c, true)
}

// StoreGet godoc
// @Summary      Get a product by slug
// @Tags         store-products
// @Produce      json
// @Param        slug path string true "Product slug"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/products/{slug} [get]
func (h *ProductHandler) StoreGet(c *gin.Context) {
	product, err := h.productService.GetBySlug(c.Request.Context(), c.Param("slug"), true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

func (h *ProductHandler) list(c *gin.Context, storefront bool) {
	var filter catalog.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.productService.List(c.Request.Context(), filter, storefront)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

func (h *ProductHandler) transition(c *gin.Context, change func(context.Context, uuid.UUID) (*catalog.ProductResponse, error)) {
	id, ok := h.paramUUID(c, "id", "product")
	if !ok {
		return
	}
	product, err := change(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
