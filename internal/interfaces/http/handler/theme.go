package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/application/theme"
)

// ThemeHandler manages storefront themes
type ThemeHandler struct {
	BaseHandler
	themeService *theme.Service
}

// NewThemeHandler creates a new theme handler
func NewThemeHandler(themeService *theme.Service) *ThemeHandler {
	return &ThemeHandler{themeService: themeService}
}

// List godoc
// @Summary      List themes
// @Tags         themes
// @Produce      json
// @Success      200 {object} dto.Response{data=[]theme.ThemeResponse}
// @Security     BearerAuth
// @Router       /admin/themes [get]
func (h *ThemeHandler) List(c *gin.Context) {
	themes, err := h.themeService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, themes)
}

// Get godoc
// @Summary      Get a theme
// @Tags         themes
// @Produce      json
// @Param        id path string true "Theme ID"
// @Success      200 {object} dto.Response{data=theme.ThemeResponse}
// @Security     BearerAuth
// @Router       /admin/themes/{id} [get]
func (h *ThemeHandler) Get(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "theme")
	if !ok {
		return
	}
	t, err := h.themeService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, t)
}

// Create godoc
// @Summary      Create a theme
// @Description  Settings are merged over the default settings
// @Tags         themes
// @Accept       json
// @Produce      json
// @Param        request body theme.CreateThemeRequest true "Theme"
// @Success      201 {object} dto.Response{data=theme.ThemeResponse}
// @Security     BearerAuth
// @Router       /admin/themes [post]
func (h *ThemeHandler) Create(c *gin.Context) {
	var req theme.CreateThemeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	t, err := h.themeService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, t)
}

// Update godoc
// @Summary      Update a theme
// @Tags         themes
// @Accept       json
// @Produce      json
// @Param        id      path string                   true "Theme ID"
// @Param        request body theme.UpdateThemeRequest true "Changes"
// @Success      200 {object} dto.Response{data=theme.ThemeResponse}
// @Security     BearerAuth
// @Router       /admin/themes/{id} [put]
func (h *ThemeHandler) Update(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "theme")
	if !ok {
		return
	}
	var req theme.UpdateThemeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	t, err := h.themeService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, t)
}

// Delete godoc
// @Summary      Delete a theme
// @Description  The active theme cannot be deleted
// @Tags         themes
// @Param        id path string true "Theme ID"
// @Success      204
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/themes/{id} [delete]
func (h *ThemeHandler) Delete(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "theme")
	if !ok {
		return
	}
	if err := h.themeService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Activate godoc
// @Summary      Activate a theme
// @Tags         themes
// @Param        id path string true "Theme ID"
// @Success      200 {object} dto.Response{data=theme.ThemeResponse}
// @Security     BearerAuth
// @Router       /admin/themes/{id}/activate [post]
func (h *ThemeHandler) Activate(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "theme")
	if !ok {
		return
	}
	t, err := h.themeService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, t)
}

// Duplicate godoc
// @Summary      Copy a theme
// @Tags         themes
// @Accept       json
// @Produce      json
// @Param        id      path string                      true  "Theme ID"
// @Param        request body theme.DuplicateThemeRequest false "Name of the copy"
// @Success      201 {object} dto.Response{data=theme.ThemeResponse}
// @Security     BearerAuth
// @Router       /admin/themes/{id}/duplicate [post]
func (h *ThemeHandler) Duplicate(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "theme")
	if !ok {
		return
	}
	var req theme.DuplicateThemeRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	t, err := h.themeService.Duplicate(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, t)
}

// Active godoc
// @Summary      The active storefront theme
// @Tags         store-theme
// @Produce      json
// @Success      200 {object} dto.Response{data=theme.ThemeResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/theme [get]
func (h *ThemeHandler) Active(c *gin.Context) {
	t, err := h.themeService.Active(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=60")
	h.Success(c, t)
}
