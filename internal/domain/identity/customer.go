package identity

import (
	"strings"
	"time"

	"github.com/shopfront/backend/internal/domain/shared"
)

// Customer is a storefront shopper account
type Customer struct {
	shared.BaseAggregateRoot
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name         string `gorm:"type:varchar(100);not null"`
	Phone        string `gorm:"type:varchar(30)"`
	PasswordHash string `gorm:"type:varchar(100);not null" json:"-"`
	Active       bool   `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer registers a new customer
func NewCustomer(email, name, password string) (*Customer, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Name:              strings.TrimSpace(name),
		PasswordHash:      hash,
		Active:            true,
	}
	c.AddDomainEvent(NewCustomerRegisteredEvent(c))
	return c, nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (c *Customer) VerifyPassword(password string) bool {
	return verifyPassword(c.PasswordHash, password)
}

// UpdateProfile changes name and phone
func (c *Customer) UpdateProfile(name, phone string) error {
	if err := validateName(name); err != nil {
		return err
	}
	phone = strings.TrimSpace(phone)
	if len(phone) > 30 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 30 characters")
	}
	c.Name = strings.TrimSpace(name)
	c.Phone = phone
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// ChangePassword replaces the password after verifying the current one
func (c *Customer) ChangePassword(current, next string) error {
	if !c.VerifyPassword(current) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if err := ValidatePassword(next); err != nil {
		return err
	}
	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	c.PasswordHash = hash
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// RecordLogin stamps the last login time
func (c *Customer) RecordLogin() {
	now := time.Now()
	c.LastLoginAt = &now
	c.UpdatedAt = now
}
