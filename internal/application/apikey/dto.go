package apikey

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/apikey"
)

// CreateAPIKeyRequest stores a new third-party credential
type CreateAPIKeyRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Provider    string `json:"provider" binding:"required,oneof=stripe twilio sendgrid paypal mailgun openai google aws custom"`
	Environment string `json:"environment" binding:"omitempty,oneof=live test"`
	Value       string `json:"value" binding:"required,max=4096"`
	Description string `json:"description" binding:"max=1000"`
}

// UpdateAPIKeyRequest changes the metadata of a key; the secret is changed with Rotate
type UpdateAPIKeyRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Environment *string `json:"environment" binding:"omitempty,oneof=live test"`
}

// RotateAPIKeyRequest replaces the secret value
type RotateAPIKeyRequest struct {
	Value string `json:"value" binding:"required,max=4096"`
}

// APIKeyListFilter holds the list query parameters
type APIKeyListFilter struct {
	Provider    string `form:"provider" binding:"omitempty,oneof=stripe twilio sendgrid paypal mailgun openai google aws custom"`
	Environment string `form:"environment" binding:"omitempty,oneof=live test"`
	Active      *bool  `form:"active"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// APIKeyResponse never carries the secret, only its masked form
type APIKeyResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Provider      string     `json:"provider"`
	Environment   string     `json:"environment"`
	MaskedValue   string     `json:"masked_value"`
	Description   string     `json:"description,omitempty"`
	Active        bool       `json:"active"`
	LastRotatedAt *time.Time `json:"last_rotated_at,omitempty"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// RevealResponse carries a decrypted secret
type RevealResponse struct {
	ID    uuid.UUID `json:"id"`
	Value string    `json:"value"`
}

// ToAPIKeyResponse converts a domain key to a response
func ToAPIKeyResponse(k *apikey.APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:            k.ID,
		Name:          k.Name,
		Provider:      string(k.Provider),
		Environment:   string(k.Environment),
		MaskedValue:   k.MaskedValue,
		Description:   k.Description,
		Active:        k.Active,
		LastRotatedAt: k.LastRotatedAt,
		LastUsedAt:    k.LastUsedAt,
		CreatedBy:     k.CreatedBy,
		CreatedAt:     k.CreatedAt,
		UpdatedAt:     k.UpdatedAt,
	}
}
