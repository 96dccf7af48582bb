package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// AdminUserRepository persists admin accounts
type AdminUserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AdminUser, error)
	FindByEmail(ctx context.Context, email string) (*AdminUser, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]AdminUser, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByRole(ctx context.Context, role AdminRole) (int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *AdminUser) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CustomerRepository persists storefront customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, customer *Customer) error
}
