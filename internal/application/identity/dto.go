package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/infrastructure/auth"
)

// LoginInput contains the input for a password login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	IP       string `json:"-"` // Client IP for login tracking
}

// TokenResult is the token pair handed to clients
type TokenResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

func toTokenResult(pair *auth.TokenPair) TokenResult {
	return TokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}

// AdminLoginResult contains the result of a successful admin login
type AdminLoginResult struct {
	TokenResult
	User AdminUserResponse `json:"user"`
}

// CustomerLoginResult contains the result of a successful customer login or registration
type CustomerLoginResult struct {
	TokenResult
	Customer CustomerResponse `json:"customer"`
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutInput identifies the access token to revoke
type LogoutInput struct {
	UserID    uuid.UUID
	TokenJTI  string
	ExpiresIn time.Duration // remaining lifetime of the token
}

// ChangePasswordInput contains the input for a password change
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// AdminUserResponse represents an admin user in API responses
type AdminUserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	Locked      bool       `json:"locked"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToAdminUserResponse converts a domain admin user to a response
func ToAdminUserResponse(u *identity.AdminUser) AdminUserResponse {
	return AdminUserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		Active:      u.Active,
		Locked:      u.IsLocked(),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// CreateAdminUserRequest creates a dashboard account
type CreateAdminUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=200"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"required,oneof=owner admin editor"`
}

// UpdateAdminUserRequest is a partial update of an admin user
type UpdateAdminUserRequest struct {
	Email *string `json:"email" binding:"omitempty,email,max=200"`
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Role  *string `json:"role" binding:"omitempty,oneof=owner admin editor"`
}

// AdminUserListFilter holds the list query parameters
type AdminUserListFilter struct {
	Search   string `form:"search"`
	Role     string `form:"role" binding:"omitempty,oneof=owner admin editor"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Actor is the authenticated admin performing a management operation
type Actor struct {
	ID   uuid.UUID
	Role identity.AdminRole
}

// RegisterCustomerRequest creates a storefront account
type RegisterCustomerRequest struct {
	Email    string `json:"email" binding:"required,email,max=200"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// UpdateProfileRequest changes the customer's profile
type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Phone string `json:"phone" binding:"max=30"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToCustomerResponse converts a domain customer to a response
func ToCustomerResponse(c *identity.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          c.ID,
		Email:       c.Email,
		Name:        c.Name,
		Phone:       c.Phone,
		LastLoginAt: c.LastLoginAt,
		CreatedAt:   c.CreatedAt,
	}
}
