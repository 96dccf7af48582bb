package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/apikey"
	domainidentity "github.com/shopfront/backend/internal/domain/identity"
)

// APIKeyHandler manages stored third-party credentials
type APIKeyHandler struct {
	BaseHandler
	service *apikey.Service
}

// NewAPIKeyHandler creates a new API key handler
func NewAPIKeyHandler(service *apikey.Service) *APIKeyHandler {
	return &APIKeyHandler{service: service}
}

// List godoc
// @Summary      List API keys
// @Description  Values are always masked
// @Tags         api-keys
// @Produce      json
// @Param        provider    query string false "Provider"
// @Param        environment query string false "live or test"
// @Param        active      query bool   false "Active flag"
// @Success      200 {object} dto.Response{data=[]apikey.APIKeyResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/api-keys [get]
func (h *APIKeyHandler) List(c *gin.Context) {
	var filter apikey.APIKeyListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Get godoc
// @Summary      Get an API key
// @Tags         api-keys
// @Produce      json
// @Param        id path string true "Key ID"
// @Success      200 {object} dto.Response{data=apikey.APIKeyResponse}
// @Security     BearerAuth
// @Router       /admin/api-keys/{id} [get]
func (h *APIKeyHandler) Get(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "API key")
	if !ok {
		return
	}
	key, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, key)
}

// Create godoc
// @Summary      Store an API key
// @Description  The value is encrypted at rest and never returned by this call
// @Tags         api-keys
// @Accept       json
// @Produce      json
// @Param        request body apikey.CreateAPIKeyRequest true "Key"
// @Success      201 {object} dto.Response{data=apikey.APIKeyResponse}
// @Security     BearerAuth
// @Router       /admin/api-keys [post]
func (h *APIKeyHandler) Create(c *gin.Context) {
	actor, ok := h.keyActor(c)
	if !ok {
		return
	}
	var req apikey.CreateAPIKeyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	key, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, key)
}

// Update godoc
// @Summary      Update API key metadata
// @Tags         api-keys
// @Accept       json
// @Produce      json
// @Param        id      path string                      true "Key ID"
// @Param        request body apikey.UpdateAPIKeyRequest true "Changes"
// @Success      200 {object} dto.Response{data=apikey.APIKeyResponse}
// @Security     BearerAuth
// @Router       /admin/api-keys/{id} [put]
func (h *APIKeyHandler) Update(c *gin.Context) {
	actor, ok := h.keyActor(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id", "API key")
	if !ok {
		return
	}
	var req apikey.UpdateAPIKeyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	key, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, key)
}

// Rotate godoc
// @Summary      Replace the secret value
// @Tags         api-keys
// @Accept       json
// @Produce      json
// @Param        id      path string                      true "Key ID"
// @Param        request body apikey.RotateAPIKeyRequest true "New value"
// @Success      200 {object} dto.Response{data=apikey.APIKeyResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/api-keys/{id}/rotate [post]
func (h *APIKeyHandler) Rotate(c *gin.Context) {
	actor, ok := h.keyActor(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id", "API key")
	if !ok {
		return
	}
	var req apikey.RotateAPIKeyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	key, err := h.service.Rotate(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, key)
}

// Reveal godoc
// @Summary      Reveal the secret value
// @Description  Owners and admins only. Every call is audit-logged.
// @Tags         api-keys
// @Produce      json
// @Param        id path string true "Key ID"
// @Success      200 {object} dto.Response{data=apikey.RevealResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/api-keys/{id}/reveal [post]
func (h *APIKeyHandler) Reveal(c *gin.Context) {
	actor, ok := h.keyActor(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id", "API key")
	if !ok {
		return
	}
	revealed, err := h.service.Reveal(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	h.Success(c, revealed)
}

// Activate godoc
// @Summary      Activate an API key
// @Tags         api-keys
// @Param        id path string true "Key ID"
// @Success      200 {object} dto.Response{data=apikey.APIKeyResponse}
// @Security     BearerAuth
// @Router       /admin/api-keys/{id}/activate [post]
func (h *APIKeyHandler) Activate(c *gin.Context) {
	h.toggle(c, h.service.Activate)
}

// Deactivate godoc
// @Summary      Deactivate an API key
// @Tags         api-keys
// @Param        id path string true "Key ID"
// @Success      200 {object} dto.Response{data=apikey.APIKeyResponse}
// @Security     BearerAuth
// @Router       /admin/api-keys/{id}/deactivate [post]
func (h *APIKeyHandler) Deactivate(c *gin.Context) {
	h.toggle(c, h.service.Deactivate)
}

// Delete godoc
// @Summary      Delete an API key
// @Tags         api-keys
// @Param        id path string true "Key ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/api-keys/{id} [delete]
func (h *APIKeyHandler) Delete(c *gin.Context) {
	actor, ok := h.keyActor(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id", "API key")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *APIKeyHandler) toggle(c *gin.Context, change func(context.Context, apikey.Actor, uuid.UUID) (*apikey.APIKeyResponse, error)) {
	actor, ok := h.keyActor(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id", "API key")
	if !ok {
		return
	}
	key, err := change(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, key)
}

// keyActor identifies the admin for the audit log
func (h *APIKeyHandler) keyActor(c *gin.Context) (apikey.Actor, bool) {
	claims := getClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return apikey.Actor{}, false
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		h.Unauthorized(c, "Invalid token subject")
		return apikey.Actor{}, false
	}
	return apikey.Actor{
		ID:    userID,
		Email: claims.Email,
		Role:  domainidentity.AdminRole(claims.Role),
		IP:    c.ClientIP(),
	}, true
}
