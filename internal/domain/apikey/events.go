package apikey

import (
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

const (
	AggregateTypeAPIKey = "APIKey"

	EventTypeAPIKeyCreated = "APIKeyCreated"
	EventTypeAPIKeyRotated = "APIKeyRotated"
)

// APIKeyCreatedEvent is published when a key is stored
type APIKeyCreatedEvent struct {
	shared.BaseDomainEvent
	KeyID    uuid.UUID `json:"key_id"`
	Provider Provider  `json:"provider"`
}

// NewAPIKeyCreatedEvent creates a new APIKeyCreatedEvent
func NewAPIKeyCreatedEvent(k *APIKey) *APIKeyCreatedEvent {
	return &APIKeyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAPIKeyCreated, AggregateTypeAPIKey, k.ID),
		KeyID:           k.ID,
		Provider:        k.Provider,
	}
}

// APIKeyRotatedEvent is published when a secret is replaced
type APIKeyRotatedEvent struct {
	shared.BaseDomainEvent
	KeyID    uuid.UUID `json:"key_id"`
	Provider Provider  `json:"provider"`
}

// NewAPIKeyRotatedEvent creates a new APIKeyRotatedEvent
func NewAPIKeyRotatedEvent(k *APIKey) *APIKeyRotatedEvent {
	return &APIKeyRotatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAPIKeyRotated, AggregateTypeAPIKey, k.ID),
		KeyID:           k.ID,
		Provider:        k.Provider,
	}
}
