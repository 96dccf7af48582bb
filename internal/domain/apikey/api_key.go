package apikey

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// Provider identifies the third-party service a key belongs to
type Provider string

const (
	ProviderStripe   Provider = "stripe"
	ProviderTwilio   Provider = "twilio"
	ProviderSendGrid Provider = "sendgrid"
	ProviderPayPal   Provider = "paypal"
	ProviderMailgun  Provider = "mailgun"
	ProviderOpenAI   Provider = "openai"
	ProviderGoogle   Provider = "google"
	ProviderAWS      Provider = "aws"
	ProviderCustom   Provider = "custom"
)

// IsValid reports whether p is a supported provider
func (p Provider) IsValid() bool {
	switch p {
	case ProviderStripe, ProviderTwilio, ProviderSendGrid, ProviderPayPal, ProviderMailgun,
		ProviderOpenAI, ProviderGoogle, ProviderAWS, ProviderCustom:
		return true
	}
	return false
}

// Environment separates live credentials from sandbox ones
type Environment string

const (
	EnvironmentLive Environment = "live"
	EnvironmentTest Environment = "test"
)

// IsValid reports whether e is a known environment
func (e Environment) IsValid() bool {
	return e == EnvironmentLive || e == EnvironmentTest
}

// Encrypter seals and opens secret values
type Encrypter interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// APIKey is a stored third-party credential. The secret is only ever held encrypted.
type APIKey struct {
	shared.BaseAggregateRoot
	Name           string      `gorm:"type:varchar(100);not null"`
	Provider       Provider    `gorm:"type:varchar(30);not null;index"`
	Environment    Environment `gorm:"type:varchar(10);not null;default:'live'"`
	EncryptedValue string      `gorm:"type:text;not null" json:"-"`
	MaskedValue    string      `gorm:"type:varchar(40);not null"`
	Description    string      `gorm:"type:text"`
	Active         bool        `gorm:"not null;default:true"`
	LastRotatedAt  *time.Time
	LastUsedAt     *time.Time
	CreatedBy      *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (APIKey) TableName() string {
	return "api_keys"
}

// NewAPIKey encrypts secret and builds an active key
func NewAPIKey(enc Encrypter, name string, provider Provider, env Environment, secret, description string, createdBy *uuid.UUID) (*APIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name is required and cannot exceed 100 characters")
	}
	if !provider.IsValid() {
		return nil, shared.NewDomainError("INVALID_PROVIDER", "Unsupported provider")
	}
	if env == "" {
		env = EnvironmentLive
	}
	if !env.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENVIRONMENT", "Environment must be live or test")
	}

	k := &APIKey{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Provider:          provider,
		Environment:       env,
		Description:       description,
		Active:            true,
		CreatedBy:         createdBy,
	}
	if err := k.seal(enc, secret); err != nil {
		return nil, err
	}
	k.AddDomainEvent(NewAPIKeyCreatedEvent(k))
	return k, nil
}

// Rotate replaces the secret
func (k *APIKey) Rotate(enc Encrypter, secret string) error {
	if err := k.seal(enc, secret); err != nil {
		return err
	}
	now := time.Now()
	k.LastRotatedAt = &now
	k.touch()
	k.AddDomainEvent(NewAPIKeyRotatedEvent(k))
	return nil
}

// Reveal decrypts the secret
func (k *APIKey) Reveal(enc Encrypter) (string, error) {
	return enc.Decrypt(k.EncryptedValue)
}

// UpdateMetadata changes the descriptive fields
func (k *APIKey) UpdateMetadata(name, description string, env Environment) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Name is required and cannot exceed 100 characters")
	}
	if env != "" {
		if !env.IsValid() {
			return shared.NewDomainError("INVALID_ENVIRONMENT", "Environment must be live or test")
		}
		k.Environment = env
	}
	k.Name = name
	k.Description = description
	k.touch()
	return nil
}

// Activate enables the key
func (k *APIKey) Activate() error {
	if k.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "API key is already active")
	}
	k.Active = true
	k.touch()
	return nil
}

// Deactivate disables the key without deleting it
func (k *APIKey) Deactivate() error {
	if !k.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "API key is already inactive")
	}
	k.Active = false
	k.touch()
	return nil
}

// MarkUsed stamps the last use time
func (k *APIKey) MarkUsed() {
	now := time.Now()
	k.LastUsedAt = &now
}

func (k *APIKey) seal(enc Encrypter, secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return shared.NewDomainError("INVALID_SECRET", "Secret value cannot be empty")
	}
	if len(secret) > 4096 {
		return shared.NewDomainError("INVALID_SECRET", "Secret value cannot exceed 4096 characters")
	}
	sealed, err := enc.Encrypt(secret)
	if err != nil {
		return err
	}
	k.EncryptedValue = sealed
	k.MaskedValue = Mask(secret)
	return nil
}

func (k *APIKey) touch() {
	k.UpdatedAt = time.Now()
	k.IncrementVersion()
}

const maxMaskStars = 12

// Mask hides a secret for display. Values longer than 8 characters keep
// their first and last 4 characters.
func Mask(secret string) string {
	r := []rune(secret)
	if len(r) <= 8 {
		return strings.Repeat("*", len(r))
	}
	stars := len(r) - 8
	if stars > maxMaskStars {
		stars = maxMaskStars
	}
	return string(r[:4]) + strings.Repeat("*", stars) + string(r[len(r)-4:])
}
