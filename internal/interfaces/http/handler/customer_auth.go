package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/application/identity"
)

// CustomerAuthHandler handles storefront accounts
type CustomerAuthHandler struct {
	BaseHandler
	customerService *identity.CustomerService
}

// NewCustomerAuthHandler creates a new customer auth handler
func NewCustomerAuthHandler(customerService *identity.CustomerService) *CustomerAuthHandler {
	return &CustomerAuthHandler{customerService: customerService}
}

// Register godoc
// @Summary      Register a customer
// @Tags         store-auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RegisterCustomerRequest true "Account"
// @Success      201 {object} dto.Response{data=identity.CustomerLoginResult}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/auth/register [post]
func (h *CustomerAuthHandler) Register(c *gin.Context) {
	var req identity.RegisterCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.customerService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Login godoc
// @Summary      Customer login
// @Tags         store-auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginInput true "Credentials"
// @Success      200 {object} dto.Response{data=identity.CustomerLoginResult}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/auth/login [post]
func (h *CustomerAuthHandler) Login(c *gin.Context) {
	var req identity.LoginInput
	if !h.bindJSON(c, &req) {
		return
	}
	req.IP = c.ClientIP()
	result, err := h.customerService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RefreshToken godoc
// @Summary      Refresh customer tokens
// @Tags         store-auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RefreshTokenInput true "Refresh token"
// @Success      200 {object} dto.Response{data=identity.TokenResult}
// @Router       /store/auth/refresh [post]
func (h *CustomerAuthHandler) RefreshToken(c *gin.Context) {
	var req identity.RefreshTokenInput
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.customerService.RefreshToken(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout godoc
// @Summary      Customer logout
// @Tags         store-auth
// @Success      204
// @Security     BearerAuth
// @Router       /store/auth/logout [post]
func (h *CustomerAuthHandler) Logout(c *gin.Context) {
	input, ok := h.logoutInput(c)
	if !ok {
		return
	}
	if err := h.customerService.Logout(c.Request.Context(), input); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me godoc
// @Summary      Current customer
// @Tags         store-auth
// @Produce      json
// @Success      200 {object} dto.Response{data=identity.CustomerResponse}
// @Security     BearerAuth
// @Router       /store/auth/me [get]
func (h *CustomerAuthHandler) Me(c *gin.Context) {
	customerID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	customer, err := h.customerService.Me(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// UpdateProfile godoc
// @Summary      Update own profile
// @Tags         store-auth
// @Accept       json
// @Produce      json
// @Param        request body identity.UpdateProfileRequest true "Profile"
// @Success      200 {object} dto.Response{data=identity.CustomerResponse}
// @Security     BearerAuth
// @Router       /store/auth/me [put]
func (h *CustomerAuthHandler) UpdateProfile(c *gin.Context) {
	customerID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req identity.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.UpdateProfile(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}
