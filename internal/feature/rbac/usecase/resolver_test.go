package usecase

import (
	"context"
	"errors"
	"testing"

	"auth_backend/internal/feature/rbac/domain/entity"
)

// mockRoleRepository is a mock implementation of the RoleRepository
// interface.
type mockRoleRepository struct {
	RolesForUserFunc        func(userID uint) ([]entity.Role, error)
	DefaultRolesFunc        func() ([]entity.Role, error)
	AssignRoleFunc          func(userID, roleID uint, assignedBy *uint) error
	SyncUserRolesFunc       func(userID uint, roleIDs []uint, assignedBy *uint) error
	FindRoleByIDFunc        func(id uint) (*entity.Role, error)
	SyncRolePermissionsFunc func(roleID uint, permissionIDs []uint) error
}

func (m *mockRoleRepository) RolesForUser(_ context.Context, userID uint) ([]entity.Role, error) {
	if m.RolesForUserFunc != nil {
		return m.RolesForUserFunc(userID)
	}
	return nil, nil
}

func (m *mockRoleRepository) DefaultRoles(_ context.Context) ([]entity.Role, error) {
	if m.DefaultRolesFunc != nil {
		return m.DefaultRolesFunc()
	}
	return nil, nil
}

func (m *mockRoleRepository) AssignRole(_ context.Context, userID, roleID uint, assignedBy *uint) error {
	if m.AssignRoleFunc != nil {
		return m.AssignRoleFunc(userID, roleID, assignedBy)
	}
	return nil
}

func (m *mockRoleRepository) SyncUserRoles(_ context.Context, userID uint, roleIDs []uint, assignedBy *uint) error {
	if m.SyncUserRolesFunc != nil {
		return m.SyncUserRolesFunc(userID, roleIDs, assignedBy)
	}
	return nil
}

func (m *mockRoleRepository) ListRoles(_ context.Context) ([]entity.Role, error) {
	return nil, nil
}

func (m *mockRoleRepository) FindRoleByID(_ context.Context, id uint) (*entity.Role, error) {
	if m.FindRoleByIDFunc != nil {
		return m.FindRoleByIDFunc(id)
	}
	return &entity.Role{ID: id}, nil
}

func (m *mockRoleRepository) CountUsersByRole(_ context.Context) (map[uint]int64, error) {
	return nil, nil
}

func (m *mockRoleRepository) ListPermissions(_ context.Context) ([]entity.Permission, error) {
	return nil, nil
}

func (m *mockRoleRepository) SyncRolePermissions(_ context.Context, roleID uint, permissionIDs []uint) error {
	if m.SyncRolePermissionsFunc != nil {
		return m.SyncRolePermissionsFunc(roleID, permissionIDs)
	}
	return nil
}

func rolesFixture() []entity.Role {
	view := entity.Permission{ID: 1, Slug: "users:view", Resource: "users", Action: "view"}
	update := entity.Permission{ID: 2, Slug: "users:update", Resource: "users", Action: "update"}
	issue := entity.Permission{ID: 3, Slug: "bonds:create", Resource: "bonds", Action: "create"}

	return []entity.Role{
		{ID: 1, Slug: "holder", Permissions: []entity.Permission{view, update}},
		{ID: 2, Slug: "issuer", Permissions: []entity.Permission{view, issue}}, // users:viewが重複
	}
}

func TestResolver_GetPermissions(t *testing.T) {
	t.Run("union of all role permissions without duplicates", func(t *testing.T) {
		repo := &mockRoleRepository{
			RolesForUserFunc: func(uint) ([]entity.Role, error) { return rolesFixture(), nil },
		}
		r := NewResolver(repo)

		perms, err := r.GetPermissions(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(perms) != 3 {
			t.Fatalf("expected 3 distinct permissions, got %d", len(perms))
		}
		// 最初の出現順を維持する
		want := []string{"users:view", "users:update", "bonds:create"}
		for i, slug := range want {
			if perms[i].Slug != slug {
				t.Errorf("position %d: got %q want %q", i, perms[i].Slug, slug)
			}
		}
	})

	t.Run("no roles means no permissions", func(t *testing.T) {
		r := NewResolver(&mockRoleRepository{})

		perms, err := r.GetPermissions(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(perms) != 0 {
			t.Errorf("expected no permissions, got %d", len(perms))
		}
	})

	t.Run("repository error propagates", func(t *testing.T) {
		repoErr := errors.New("db down")
		repo := &mockRoleRepository{
			RolesForUserFunc: func(uint) ([]entity.Role, error) { return nil, repoErr },
		}
		r := NewResolver(repo)

		_, err := r.GetPermissions(context.Background(), 1)
		if !errors.Is(err, repoErr) {
			t.Errorf("expected repository error, got: %v", err)
		}
	})
}

func TestResolver_HasPermission(t *testing.T) {
	repo := &mockRoleRepository{
		RolesForUserFunc: func(uint) ([]entity.Role, error) { return rolesFixture(), nil },
	}
	r := NewResolver(repo)
	ctx := context.Background()

	ok, err := r.HasPermission(ctx, 1, "bonds:create")
	if err != nil || !ok {
		t.Errorf("expected permission granted, got ok=%v err=%v", ok, err)
	}

	ok, err = r.HasPermission(ctx, 1, "users:delete")
	if err != nil || ok {
		t.Errorf("expected permission denied, got ok=%v err=%v", ok, err)
	}
}

func TestResolver_Roles(t *testing.T) {
	repo := &mockRoleRepository{
		RolesForUserFunc: func(uint) ([]entity.Role, error) { return rolesFixture(), nil },
	}
	r := NewResolver(repo)
	ctx := context.Background()

	t.Run("HasRole", func(t *testing.T) {
		ok, _ := r.HasRole(ctx, 1, "holder")
		if !ok {
			t.Error("holder role expected")
		}
		ok, _ = r.HasRole(ctx, 1, "admin")
		if ok {
			t.Error("admin role not expected")
		}
	})

	t.Run("HasAnyRole", func(t *testing.T) {
		ok, _ := r.HasAnyRole(ctx, 1, "admin", "issuer")
		if !ok {
			t.Error("issuer should satisfy HasAnyRole")
		}
		ok, _ = r.HasAnyRole(ctx, 1, "admin", "auditor")
		if ok {
			t.Error("no listed role is held")
		}
	})
}

func TestResolver_Authorize(t *testing.T) {
	ctx := context.Background()

	t.Run("admin bypasses individual permissions", func(t *testing.T) {
		repo := &mockRoleRepository{
			RolesForUserFunc: func(uint) ([]entity.Role, error) {
				// adminロールは個別権限を一切持っていない
				return []entity.Role{{ID: 9, Slug: entity.AdminRoleSlug}}, nil
			},
		}
		r := NewResolver(repo)

		ok, err := r.Authorize(ctx, 1, "anything:at-all")
		if err != nil || !ok {
			t.Errorf("admin should always be authorized, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("non-admin needs the exact permission", func(t *testing.T) {
		repo := &mockRoleRepository{
			RolesForUserFunc: func(uint) ([]entity.Role, error) { return rolesFixture(), nil },
		}
		r := NewResolver(repo)

		ok, err := r.Authorize(ctx, 1, "users:view")
		if err != nil || !ok {
			t.Errorf("granted permission should authorize, got ok=%v err=%v", ok, err)
		}

		ok, err = r.Authorize(ctx, 1, "users:delete")
		if err != nil || ok {
			t.Errorf("missing permission should deny, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("revoking a role revokes its permissions", func(t *testing.T) {
		roles := rolesFixture()
		repo := &mockRoleRepository{
			RolesForUserFunc: func(uint) ([]entity.Role, error) { return roles, nil },
		}
		r := NewResolver(repo)

		ok, _ := r.Authorize(ctx, 1, "bonds:create")
		if !ok {
			t.Fatal("precondition: permission granted through issuer role")
		}

		roles = roles[:1] // issuerロールを剥奪
		ok, _ = r.Authorize(ctx, 1, "bonds:create")
		if ok {
			t.Error("permission should disappear with the role")
		}
	})
}
