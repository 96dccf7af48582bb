package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/cms"
	"github.com/shopfront/backend/internal/application/i18n"
)

// PageHandler manages CMS pages and renders them for the storefront
type PageHandler struct {
	BaseHandler
	pageService     *cms.PageService
	languageService *i18n.LanguageService
}

// NewPageHandler creates a new page handler
func NewPageHandler(pageService *cms.PageService, languageService *i18n.LanguageService) *PageHandler {
	return &PageHandler{pageService: pageService, languageService: languageService}
}

// List godoc
// @Summary      List pages
// @Tags         pages
// @Produce      json
// @Param        search    query string false "Title or slug"
// @Param        status    query string false "draft or published"
// @Param        language  query string false "Language code"
// @Success      200 {object} dto.Response{data=[]cms.PageListItemResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/pages [get]
func (h *PageHandler) List(c *gin.Context) {
	var filter cms.PageListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.pageService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Get godoc
// @Summary      Get a page with its blocks
// @Tags         pages
// @Produce      json
// @Param        id path string true "Page ID"
// @Success      200 {object} dto.Response{data=cms.PageResponse}
// @Security     BearerAuth
// @Router       /admin/pages/{id} [get]
func (h *PageHandler) Get(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "page")
	if !ok {
		return
	}
	p, err := h.pageService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Create godoc
// @Summary      Create a draft page
// @Tags         pages
// @Accept       json
// @Produce      json
// @Param        request body cms.CreatePageRequest true "Page"
// @Success      201 {object} dto.Response{data=cms.PageResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/pages [post]
func (h *PageHandler) Create(c *gin.Context) {
	var req cms.CreatePageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.pageService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// Update godoc
// @Summary      Update page title, slug or SEO
// @Tags         pages
// @Accept       json
// @Produce      json
// @Param        id      path string                true "Page ID"
// @Param        request body cms.UpdatePageRequest true "Changes"
// @Success      200 {object} dto.Response{data=cms.PageResponse}
// @Security     BearerAuth
// @Router       /admin/pages/{id} [put]
func (h *PageHandler) Update(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "page")
	if !ok {
		return
	}
	var req cms.UpdatePageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.pageService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Delete godoc
// @Summary      Delete a page
// @Description  Deleting a base page deletes its translations
// @Tags         pages
// @Param        id path string true "Page ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/pages/{id} [delete]
func (h *PageHandler) Delete(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "page")
	if !ok {
		return
	}
	if err := h.pageService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Publish godoc
// @Summary      Publish a page
// @Tags         pages
// @Param        id path string true "Page ID"
// @Success      200 {object} dto.Response{data=cms.PageResponse}
// @Security     BearerAuth
// @Router       /admin/pages/{id}/publish [post]
func (h *PageHandler) Publish(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "page")
	if !ok {
		return
	}
	p, err := h.pageService.Publish(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Unpublish godoc
// @Summary      Unpublish a page
// @Tags         pages
// @Param        id path string true "Page ID"
// @Success      200 {object} dto.Response{data=cms.PageResponse}
// @Security     BearerAuth
// @Router       /admin/pages/{id}/unpublish [post]
func (h *PageHandler) Unpublish(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "page")
	if !ok {
		return
	}
	p, err := h.pageService.Unpublish(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// AddBlock godoc
// @Summary      Append a block
// @Tags         pages
// @Accept       json
// @Produce      json
// @Param        id      path string         true "Page ID"
// @Param        request body cms.BlockInput true "Block"
// @Success      201 {object} dto.Response{data=cms.BlockResponse}
// @Security     BearerAuth
// @Router       /admin/pages/{id}/blocks [post]
func (h *PageHandler) AddBlock(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "page")
	if !ok {
		return
	}
	var req cms.BlockInput
	if !h.bindJSON(c, &req) {
		return
	}
	b, err := h.pageService.AddBlock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, b)
}

// UpdateBlock godoc
// @Summary      Replace block content
// @Tags         pages
// @Accept       json
// @Produce      json
// @Param        id       path string                 true "Page ID"
// @Param        block_id path string                 true "Block ID"
// @Param        request  body cms.UpdateBlockRequest true "Content"
// @Success      200 {object} dto.Response{data=cms.BlockResponse}
// @Security     BearerAuth
// @Router       /admin/pages/{id}/blocks/{block_id} [put]
func (h *PageHandler) UpdateBlock(c *gin.Context) {
	pageID, blockID, ok := h.blockParams(c)
	if !ok {
		return
	}
	var req cms.UpdateBlockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	b, err := h.pageService.UpdateBlock(c.Request.Context(), pageID, blockID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// DeleteBlock godoc
// @Summary      Remove a block
// @Tags         pages
// @Param        id       path string true "Page ID"
// @Param        block_id path string true "Block ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/pages/{id}/blocks/{block_id} [delete]
func (h *PageHandler) DeleteBlock(c *gin.Context) {
	pageID, blockID, ok := h.blockParams(c)
	if !ok {
		return
	}
	if err := h.pageService.DeleteBlock(c.Request.Context(), pageID, blockID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ReorderBlocks godoc
// @Summary      Reorder blocks
// @Tags         pages
// @Accept       json
// @Produce      json
// @Param        id      path string                   true "Page ID"
// @Param        request body cms.ReorderBlocksRequest true "Every block id in the new order"
// @Success      200 {object} dto.Response{data=cms.PageResponse}
// @Security     BearerAuth
// @Router       /admin/pages/{id}/blocks/reorder [put]
func (h *PageHandler) ReorderBlocks(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "page")
	if !ok {
		return
	}
	var req cms.ReorderBlocksRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.pageService.ReorderBlocks(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// CreateTranslation godoc
// @Summary      Translate a page
// @Description  Copies the base page and its blocks into another language
// @Tags         pages
// @Accept       json
// @Produce      json
// @Param        id      path string                       true "Base page ID"
// @Param        request body cms.CreateTranslationRequest true "Target language"
// @Success      201 {object} dto.Response{data=cms.PageResponse}
// @Security     BearerAuth
// @Router       /admin/pages/{id}/translations [post]
func (h *PageHandler) CreateTranslation(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "page")
	if !ok {
		return
	}
	var req cms.CreateTranslationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.pageService.CreateTranslation(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// ListTranslations godoc
// @Summary      Translations of a page
// @Tags         pages
// @Produce      json
// @Param        id path string true "Base page ID"
// @Success      200 {object} dto.Response{data=[]cms.PageListItemResponse}
// @Security     BearerAuth
// @Router       /admin/pages/{id}/translations [get]
func (h *PageHandler) ListTranslations(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "page")
	if !ok {
		return
	}
	pages, err := h.pageService.ListTranslations(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pages)
}

// UpdateTranslatedBlock godoc
// @Summary      Save translated block content
// @Description  Only translatable fields are taken; the rest comes from the base block
// @Tags         pages
// @Accept       json
// @Produce      json
// @Param        id       path string                           true "Translation page ID"
// @Param        block_id path string                           true "Block ID"
// @Param        request  body cms.UpdateTranslatedBlockRequest true "Translated content"
// @Success      200 {object} dto.Response{data=cms.BlockResponse}
// @Security     BearerAuth
// @Router       /admin/pages/{id}/blocks/{block_id}/translation [put]
func (h *PageHandler) UpdateTranslatedBlock(c *gin.Context) {
	pageID, blockID, ok := h.blockParams(c)
	if !ok {
		return
	}
	var req cms.UpdateTranslatedBlockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	b, err := h.pageService.UpdateTranslatedBlock(c.Request.Context(), pageID, blockID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// TranslatableFields godoc
// @Summary      Block fields by class
// @Tags         pages
// @Produce      json
// @Param        id       path string true "Page ID"
// @Param        block_id path string true "Block ID"
// @Success      200 {object} dto.Response{data=cms.Buckets}
// @Security     BearerAuth
// @Router       /admin/pages/{id}/blocks/{block_id}/fields [get]
func (h *PageHandler) TranslatableFields(c *gin.Context) {
	pageID, blockID, ok := h.blockParams(c)
	if !ok {
		return
	}
	buckets, err := h.pageService.TranslatableFields(c.Request.Context(), pageID, blockID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, buckets)
}

// Render godoc
// @Summary      Render a published page
// @Description  The language comes from ?lang or Accept-Language; missing translations fall back to the default language
// @Tags         store-pages
// @Produce      json
// @Param        slug path  string true  "Page slug"
// @Param        lang query string false "Language code"
// @Success      200 {object} dto.Response{data=cms.RenderedPage}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/pages/{slug} [get]
func (h *PageHandler) Render(c *gin.Context) {
	lang, err := h.languageService.Negotiate(c.Request.Context(), c.Query("lang"), c.GetHeader("Accept-Language"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	rendered, err := h.pageService.Render(c.Request.Context(), lang, c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Language", rendered.LanguageCode)
	c.Header("Vary", "Accept-Language")
	h.Success(c, rendered)
}

func (h *PageHandler) blockParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	pageID, ok := h.paramUUID(c, "id", "page")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	blockID, ok := h.paramUUID(c, "block_id", "block")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return pageID, blockID, true
}
