package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// UserService manages dashboard accounts. Only owners and admins may call it,
// and only owners may grant or modify the owner role.
type UserService struct {
	userRepo       identity.AdminUserRepository
	blacklist      auth.TokenBlacklist
	config         AuthServiceConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo identity.AdminUserRepository,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo:       userRepo,
		blacklist:      blacklist,
		config:         config,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create creates an admin user
func (s *UserService) Create(ctx context.Context, actor Actor, req CreateAdminUserRequest) (*AdminUserResponse, error) {
	role := identity.AdminRole(req.Role)
	if err := s.authorize(actor, role); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, identity.NormalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
	}

	user, err := identity.NewAdminUser(req.Email, req.Name, req.Password, role)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("Admin user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)),
		zap.String("created_by", actor.ID.String()))

	response := ToAdminUserResponse(user)
	return &response, nil
}

// GetByID retrieves an admin user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*AdminUserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToAdminUserResponse(user)
	return &response, nil
}

// List returns a page of admin users
func (s *UserService) List(ctx context.Context, filter AdminUserListFilter) (*shared.Paginated[AdminUserResponse], error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "asc",
		Search:   strings.TrimSpace(filter.Search),
	}.Normalize(100)
	if filter.Role != "" {
		domainFilter.Filters["role"] = filter.Role
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	users, err := s.userRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.userRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]AdminUserResponse, len(users))
	for i := range users {
		items[i] = ToAdminUserResponse(&users[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update changes name, email or role
func (s *UserService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateAdminUserRequest) (*AdminUserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, user.Role); err != nil {
		return nil, err
	}

	if req.Name != nil || req.Email != nil {
		name, email := user.Name, user.Email
		if req.Name != nil {
			name = *req.Name
		}
		if req.Email != nil {
			email = identity.NormalizeEmail(*req.Email)
			if email != user.Email {
				exists, err := s.userRepo.ExistsByEmail(ctx, email)
				if err != nil {
					return nil, err
				}
				if exists {
					return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
				}
			}
		}
		if err := user.Update(name, email); err != nil {
			return nil, err
		}
	}

	roleChanged := false
	if req.Role != nil && identity.AdminRole(*req.Role) != user.Role {
		role := identity.AdminRole(*req.Role)
		if err := s.authorize(actor, role); err != nil {
			return nil, err
		}
		if user.ID == actor.ID {
			return nil, shared.NewDomainError("CANNOT_MODIFY_SELF", "You cannot change your own role")
		}
		if user.Role == identity.AdminRoleOwner {
			if err := s.ensureAnotherOwner(ctx); err != nil {
				return nil, err
			}
		}
		if err := user.ChangeRole(role); err != nil {
			return nil, err
		}
		roleChanged = true
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user)
	if roleChanged {
		// outstanding access tokens carry the old role
		s.revokeAll(ctx, user.ID)
	}

	response := ToAdminUserResponse(user)
	return &response, nil
}

// Activate re-enables an account
func (s *UserService) Activate(ctx context.Context, actor Actor, id uuid.UUID) (*AdminUserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, user.Role); err != nil {
		return nil, err
	}
	if err := user.Activate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	response := ToAdminUserResponse(user)
	return &response, nil
}

// Deactivate disables an account and revokes its tokens
func (s *UserService) Deactivate(ctx context.Context, actor Actor, id uuid.UUID) (*AdminUserResponse, error) {
	if id == actor.ID {
		return nil, shared.NewDomainError("CANNOT_MODIFY_SELF", "You cannot deactivate your own account")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, user.Role); err != nil {
		return nil, err
	}
	if user.Role == identity.AdminRoleOwner {
		if err := s.ensureAnotherOwner(ctx); err != nil {
			return nil, err
		}
	}
	if err := user.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.revokeAll(ctx, user.ID)

	response := ToAdminUserResponse(user)
	return &response, nil
}

// Delete removes an account. Users cannot delete themselves and the last owner
// cannot be deleted.
func (s *UserService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if id == actor.ID {
		return shared.NewDomainError("CANNOT_DELETE_SELF", "You cannot delete your own account")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, user.Role); err != nil {
		return err
	}
	if user.Role == identity.AdminRoleOwner {
		if err := s.ensureAnotherOwner(ctx); err != nil {
			return err
		}
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.revokeAll(ctx, id)

	s.logger.Info("Admin user deleted",
		zap.String("user_id", id.String()),
		zap.String("deleted_by", actor.ID.String()))
	return nil
}

// authorize checks that actor may manage accounts holding role
func (s *UserService) authorize(actor Actor, role identity.AdminRole) error {
	if !actor.Role.CanManageUsers() {
		return shared.NewDomainError("FORBIDDEN", "Only owners and admins can manage users")
	}
	if role == identity.AdminRoleOwner && actor.Role != identity.AdminRoleOwner {
		return shared.NewDomainError("FORBIDDEN", "Only owners can manage owner accounts")
	}
	return nil
}

func (s *UserService) ensureAnotherOwner(ctx context.Context) error {
	owners, err := s.userRepo.CountByRole(ctx, identity.AdminRoleOwner)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return shared.NewDomainError("LAST_OWNER", "At least one owner account must remain")
	}
	return nil
}

func (s *UserService) revokeAll(ctx context.Context, id uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.RevokeAllForUser(ctx, auth.ScopeAdmin, id.String(), s.config.RevocationTTL); err != nil {
		s.logger.Error("Failed to revoke user tokens", zap.String("user_id", id.String()), zap.Error(err))
	}
}

func (s *UserService) publish(ctx context.Context, user *identity.AdminUser) {
	events := user.GetDomainEvents()
	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish user events", zap.Error(err))
		}
	}
	user.ClearDomainEvents()
}
