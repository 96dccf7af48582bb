package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupUserService() (*UserService, *MockAdminUserRepository, *auth.InMemoryTokenBlacklist) {
	repo := new(MockAdminUserRepository)
	blacklist := auth.NewInMemoryTokenBlacklist()
	return NewUserService(repo, blacklist, DefaultAuthServiceConfig(), nil, nil), repo, blacklist
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	owner := Actor{ID: uuid.New(), Role: identity.AdminRoleOwner}
	admin := Actor{ID: uuid.New(), Role: identity.AdminRoleAdmin}
	editor := Actor{ID: uuid.New(), Role: identity.AdminRoleEditor}

	req := CreateAdminUserRequest{Email: "Ed@Shop.test", Name: "Ed", Password: "edit0r-pass", Role: "editor"}

	t.Run("editor cannot manage users", func(t *testing.T) {
		svc, _, _ := setupUserService()
		_, err := svc.Create(ctx, editor, req)
		assertCode(t, err, "FORBIDDEN")
	})

	t.Run("admin cannot create owners", func(t *testing.T) {
		svc, _, _ := setupUserService()
		ownerReq := req
		ownerReq.Role = "owner"
		_, err := svc.Create(ctx, admin, ownerReq)
		assertCode(t, err, "FORBIDDEN")
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, repo, _ := setupUserService()
		repo.On("ExistsByEmail", ctx, "ed@shop.test").Return(true, nil)
		_, err := svc.Create(ctx, owner, req)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("creates", func(t *testing.T) {
		svc, repo, _ := setupUserService()
		repo.On("ExistsByEmail", ctx, "ed@shop.test").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*identity.AdminUser")).Return(nil)

		resp, err := svc.Create(ctx, admin, req)
		require.NoError(t, err)
		assert.Equal(t, "ed@shop.test", resp.Email)
		assert.Equal(t, "editor", resp.Role)
		assert.True(t, resp.Active)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	owner := Actor{ID: uuid.New(), Role: identity.AdminRoleOwner}

	t.Run("cannot delete self", func(t *testing.T) {
		svc, repo, _ := setupUserService()
		err := svc.Delete(ctx, owner, owner.ID)
		assertCode(t, err, "CANNOT_DELETE_SELF")
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("cannot delete the last owner", func(t *testing.T) {
		svc, repo, _ := setupUserService()
		target := newTestAdmin(t, identity.AdminRoleOwner)
		repo.On("FindByID", ctx, target.ID).Return(target, nil)
		repo.On("CountByRole", ctx, identity.AdminRoleOwner).Return(int64(1), nil)

		err := svc.Delete(ctx, owner, target.ID)
		assertCode(t, err, "LAST_OWNER")
	})

	t.Run("deletes and revokes tokens", func(t *testing.T) {
		svc, repo, blacklist := setupUserService()
		target := newTestAdmin(t, identity.AdminRoleEditor)
		repo.On("FindByID", ctx, target.ID).Return(target, nil)
		repo.On("Delete", ctx, target.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, owner, target.ID))
		revoked, err := blacklist.IsUserRevoked(ctx, auth.ScopeAdmin, target.ID.String(), time.Now().Add(-time.Second))
		require.NoError(t, err)
		assert.True(t, revoked)
	})
}

func TestUserService_UpdateRole(t *testing.T) {
	ctx := context.Background()
	owner := Actor{ID: uuid.New(), Role: identity.AdminRoleOwner}

	t.Run("cannot change own role", func(t *testing.T) {
		svc, repo, _ := setupUserService()
		self := newTestAdmin(t, identity.AdminRoleOwner)
		self.ID = owner.ID
		repo.On("FindByID", ctx, self.ID).Return(self, nil)

		role := "admin"
		_, err := svc.Update(ctx, owner, self.ID, UpdateAdminUserRequest{Role: &role})
		assertCode(t, err, "CANNOT_MODIFY_SELF")
	})

	t.Run("promotes editor", func(t *testing.T) {
		svc, repo, _ := setupUserService()
		target := newTestAdmin(t, identity.AdminRoleEditor)
		repo.On("FindByID", ctx, target.ID).Return(target, nil)
		repo.On("Save", ctx, target).Return(nil)

		role := "admin"
		name := "Eddie"
		resp, err := svc.Update(ctx, owner, target.ID, UpdateAdminUserRequest{Role: &role, Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "admin", resp.Role)
		assert.Equal(t, "Eddie", resp.Name)
		assert.Empty(t, target.GetDomainEvents())
	})
}

func TestUserService_Deactivate(t *testing.T) {
	ctx := context.Background()
	admin := Actor{ID: uuid.New(), Role: identity.AdminRoleAdmin}

	svc, repo, _ := setupUserService()
	_, err := svc.Deactivate(ctx, admin, admin.ID)
	assertCode(t, err, "CANNOT_MODIFY_SELF")

	target := newTestAdmin(t, identity.AdminRoleEditor)
	repo.On("FindByID", ctx, target.ID).Return(target, nil)
	repo.On("Save", ctx, target).Return(nil)

	resp, err := svc.Deactivate(ctx, admin, target.ID)
	require.NoError(t, err)
	assert.False(t, resp.Active)

	resp, err = svc.Activate(ctx, admin, target.ID)
	require.NoError(t, err)
	assert.True(t, resp.Active)
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setupUserService()

	active := true
	match := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["role"] == "editor" && f.Filters["active"] == true && f.Search == "ed"
	})
	repo.On("FindAll", ctx, match).Return([]identity.AdminUser{*newTestAdmin(t, identity.AdminRoleEditor)}, nil)
	repo.On("Count", ctx, match).Return(int64(1), nil)

	page, err := svc.List(ctx, AdminUserListFilter{Search: " ed ", Role: "editor", Active: &active})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Total)
}
