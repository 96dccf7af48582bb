package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/application/identity"
	domainidentity "github.com/shopfront/backend/internal/domain/identity"
)

// AdminAuthHandler handles dashboard sign-in and session endpoints
type AdminAuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAdminAuthHandler creates a new admin auth handler
func NewAdminAuthHandler(authService *identity.AuthService) *AdminAuthHandler {
	return &AdminAuthHandler{authService: authService}
}

// Login godoc
// @Summary      Admin login
// @Description  Authenticate a dashboard user with email and password
// @Tags         admin-auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginInput true "Login credentials"
// @Success      200 {object} dto.Response{data=identity.AdminLoginResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/auth/login [post]
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req identity.LoginInput
	if !h.bindJSON(c, &req) {
		return
	}
	req.IP = c.ClientIP()

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RefreshToken godoc
// @Summary      Refresh admin tokens
// @Tags         admin-auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RefreshTokenInput true "Refresh token"
// @Success      200 {object} dto.Response{data=identity.TokenResult}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/auth/refresh [post]
func (h *AdminAuthHandler) RefreshToken(c *gin.Context) {
	var req identity.RefreshTokenInput
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.authService.RefreshToken(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout godoc
// @Summary      Admin logout
// @Description  Revoke the current access token
// @Tags         admin-auth
// @Produce      json
// @Success      204
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/auth/logout [post]
func (h *AdminAuthHandler) Logout(c *gin.Context) {
	input, ok := h.logoutInput(c)
	if !ok {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), input); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me godoc
// @Summary      Current admin user
// @Tags         admin-auth
// @Produce      json
// @Success      200 {object} dto.Response{data=identity.AdminUserResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/auth/me [get]
func (h *AdminAuthHandler) Me(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	user, err := h.authService.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ChangePassword godoc
// @Summary      Change own password
// @Description  Changes the password and signs out every other session
// @Tags         admin-auth
// @Accept       json
// @Produce      json
// @Param        request body identity.ChangePasswordInput true "Passwords"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/auth/password [put]
func (h *AdminAuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req identity.ChangePasswordInput
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), userID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// logoutInput builds the revocation input from the current access token
func (h *BaseHandler) logoutInput(c *gin.Context) (identity.LogoutInput, bool) {
	claims := getClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return identity.LogoutInput{}, false
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		h.Unauthorized(c, "Invalid token subject")
		return identity.LogoutInput{}, false
	}
	return identity.LogoutInput{
		UserID:    userID,
		TokenJTI:  claims.ID,
		ExpiresIn: claims.GetRemainingTTL(),
	}, true
}

// adminActor returns the signed-in admin as an identity actor
func (h *BaseHandler) adminActor(c *gin.Context) (identity.Actor, bool) {
	claims := getClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return identity.Actor{}, false
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		h.Unauthorized(c, "Invalid token subject")
		return identity.Actor{}, false
	}
	return identity.Actor{ID: userID, Role: domainidentity.AdminRole(claims.Role)}, true
}
