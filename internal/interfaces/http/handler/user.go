package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/identity"
)

// UserHandler manages dashboard accounts
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identity.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List godoc
// @Summary      List admin users
// @Tags         users
// @Produce      json
// @Param        search    query string false "Email or name"
// @Param        role      query string false "owner, admin or editor"
// @Param        active    query bool   false "Active flag"
// @Param        page      query int    false "Page"
// @Param        page_size query int    false "Page size"
// @Success      200 {object} dto.Response{data=[]identity.AdminUserResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var filter identity.AdminUserListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Get godoc
// @Summary      Get an admin user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=identity.AdminUserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "user")
	if !ok {
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Create godoc
// @Summary      Create an admin user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body identity.CreateAdminUserRequest true "User"
// @Success      201 {object} dto.Response{data=identity.AdminUserResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := h.adminActor(c)
	if !ok {
		return
	}
	var req identity.CreateAdminUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// Update godoc
// @Summary      Update an admin user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "User ID"
// @Param        request body identity.UpdateAdminUserRequest true "Changes"
// @Success      200 {object} dto.Response{data=identity.AdminUserResponse}
// @Security     BearerAuth
// @Router       /admin/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := h.adminActor(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id", "user")
	if !ok {
		return
	}
	var req identity.UpdateAdminUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Activate godoc
// @Summary      Activate an admin user
// @Tags         users
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=identity.AdminUserResponse}
// @Security     BearerAuth
// @Router       /admin/users/{id}/activate [post]
func (h *UserHandler) Activate(c *gin.Context) {
	h.toggle(c, h.userService.Activate)
}

// Deactivate godoc
// @Summary      Deactivate an admin user
// @Description  Deactivation revokes every session of the user
// @Tags         users
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=identity.AdminUserResponse}
// @Security     BearerAuth
// @Router       /admin/users/{id}/deactivate [post]
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.toggle(c, h.userService.Deactivate)
}

// Delete godoc
// @Summary      Delete an admin user
// @Tags         users
// @Param        id path string true "User ID"
// @Success      204
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	actor, ok := h.adminActor(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id", "user")
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *UserHandler) toggle(c *gin.Context, change func(ctx context.Context, actor identity.Actor, id uuid.UUID) (*identity.AdminUserResponse, error)) {
	actor, ok := h.adminActor(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id", "user")
	if !ok {
		return
	}
	user, err := change(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
