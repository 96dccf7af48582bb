package identity

import (
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

const (
	AggregateTypeAdminUser = "AdminUser"
	AggregateTypeCustomer  = "Customer"

	EventTypeAdminUserCreated   = "AdminUserCreated"
	EventTypeAdminRoleChanged   = "AdminRoleChanged"
	EventTypeCustomerRegistered = "CustomerRegistered"
)

// AdminUserCreatedEvent is published when an admin account is created
type AdminUserCreatedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   AdminRole `json:"role"`
}

// NewAdminUserCreatedEvent creates a new AdminUserCreatedEvent
func NewAdminUserCreatedEvent(u *AdminUser) *AdminUserCreatedEvent {
	return &AdminUserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdminUserCreated, AggregateTypeAdminUser, u.ID),
		UserID:          u.ID,
		Email:           u.Email,
		Role:            u.Role,
	}
}

// AdminRoleChangedEvent is published when an admin's role changes
type AdminRoleChangedEvent struct {
	shared.BaseDomainEvent
	UserID  uuid.UUID `json:"user_id"`
	OldRole AdminRole `json:"old_role"`
	NewRole AdminRole `json:"new_role"`
}

// NewAdminRoleChangedEvent creates a new AdminRoleChangedEvent
func NewAdminRoleChangedEvent(u *AdminUser, old AdminRole) *AdminRoleChangedEvent {
	return &AdminRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdminRoleChanged, AggregateTypeAdminUser, u.ID),
		UserID:          u.ID,
		OldRole:         old,
		NewRole:         u.Role,
	}
}

// CustomerRegisteredEvent is published when a shopper signs up
type CustomerRegisteredEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Email      string    `json:"email"`
}

// NewCustomerRegisteredEvent creates a new CustomerRegisteredEvent
func NewCustomerRegisteredEvent(c *Customer) *CustomerRegisteredEvent {
	return &CustomerRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerRegistered, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		Email:           c.Email,
	}
}
