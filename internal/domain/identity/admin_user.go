package identity

import (
	"strings"
	"time"

	"github.com/shopfront/backend/internal/domain/shared"
)

// AdminRole is the permission level of a dashboard operator
type AdminRole string

const (
	AdminRoleOwner  AdminRole = "owner"
	AdminRoleAdmin  AdminRole = "admin"
	AdminRoleEditor AdminRole = "editor"
)

// IsValid reports whether r is a known role
func (r AdminRole) IsValid() bool {
	switch r {
	case AdminRoleOwner, AdminRoleAdmin, AdminRoleEditor:
		return true
	}
	return false
}

// CanManageUsers reports whether the role may manage other admin users
func (r AdminRole) CanManageUsers() bool {
	return r == AdminRoleOwner || r == AdminRoleAdmin
}

// CanManageSecrets reports whether the role may reveal or rotate API keys
func (r AdminRole) CanManageSecrets() bool {
	return r == AdminRoleOwner || r == AdminRoleAdmin
}

// AdminUser is a dashboard operator account
type AdminUser struct {
	shared.BaseAggregateRoot
	Email          string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name           string     `gorm:"type:varchar(100);not null"`
	PasswordHash   string     `gorm:"type:varchar(100);not null" json:"-"`
	Role           AdminRole  `gorm:"type:varchar(20);not null;default:'editor'"`
	Active         bool       `gorm:"not null;default:true"`
	FailedAttempts int        `gorm:"not null;default:0"`
	LockedUntil    *time.Time
	LastLoginAt    *time.Time
	LastLoginIP    string `gorm:"type:varchar(45)"`
}

// TableName returns the table name for GORM
func (AdminUser) TableName() string {
	return "admin_users"
}

// NewAdminUser creates an active admin account
func NewAdminUser(email, name, password string, role AdminRole) (*AdminUser, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be one of owner, admin, editor")
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &AdminUser{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Name:              strings.TrimSpace(name),
		PasswordHash:      hash,
		Role:              role,
		Active:            true,
	}
	u.AddDomainEvent(NewAdminUserCreatedEvent(u))
	return u, nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *AdminUser) VerifyPassword(password string) bool {
	return verifyPassword(u.PasswordHash, password)
}

// ChangePassword replaces the password after verifying the current one
func (u *AdminUser) ChangePassword(current, next string) error {
	if !u.VerifyPassword(current) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if current == next {
		return shared.NewDomainError("INVALID_PASSWORD", "New password must differ from the current one")
	}
	return u.SetPassword(next)
}

// SetPassword replaces the password without checking the old one
func (u *AdminUser) SetPassword(password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.touch()
	return nil
}

// Update changes name and email
func (u *AdminUser) Update(name, email string) error {
	email = NormalizeEmail(email)
	if err := validateName(name); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	u.Name = strings.TrimSpace(name)
	u.Email = email
	u.touch()
	return nil
}

// ChangeRole assigns a new role
func (u *AdminUser) ChangeRole(role AdminRole) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be one of owner, admin, editor")
	}
	if u.Role == role {
		return nil
	}
	old := u.Role
	u.Role = role
	u.touch()
	u.AddDomainEvent(NewAdminRoleChangedEvent(u, old))
	return nil
}

// Activate re-enables a deactivated account
func (u *AdminUser) Activate() error {
	if u.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}
	u.Active = true
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.touch()
	return nil
}

// Deactivate disables login for the account
func (u *AdminUser) Deactivate() error {
	if !u.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "User is already inactive")
	}
	u.Active = false
	u.touch()
	return nil
}

// IsLocked reports whether the account is temporarily locked
func (u *AdminUser) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

// CanLogin reports whether the account may authenticate now
func (u *AdminUser) CanLogin() bool {
	return u.Active && !u.IsLocked()
}

// RecordLoginSuccess clears failure counters and stamps the login
func (u *AdminUser) RecordLoginSuccess(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.touch()
}

// RecordLoginFailure counts a failed attempt and reports whether the account got locked
func (u *AdminUser) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.touch()
	if u.FailedAttempts >= maxAttempts {
		until := time.Now().Add(lockDuration)
		u.LockedUntil = &until
		u.FailedAttempts = 0
		return true
	}
	return false
}

func (u *AdminUser) touch() {
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}
