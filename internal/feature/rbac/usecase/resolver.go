// Package usecase はロールと権限の解決・管理ロジックを提供します。
package usecase

import (
	"context"

	"auth_backend/internal/feature/rbac/domain/entity"
)

// RoleRepository はロール・権限データへのアクセスを抽象化するインターフェースです。
// 実装はadaptersパッケージにあります。
type RoleRepository interface {
	// RolesForUser はユーザーに割り当てられたロールを、権限を含めて
	// 割り当て日時の昇順で返します。
	RolesForUser(ctx context.Context, userID uint) ([]entity.Role, error)

	// DefaultRoles は新規ユーザーに付与するロールを返します。
	DefaultRoles(ctx context.Context) ([]entity.Role, error)

	// AssignRole はユーザーにロールを付与します。既に付与済みの場合は
	// 何もしません。
	AssignRole(ctx context.Context, userID, roleID uint, assignedBy *uint) error

	// SyncUserRoles はユーザーのロール集合をroleIDsに置き換えます。
	SyncUserRoles(ctx context.Context, userID uint, roleIDs []uint, assignedBy *uint) error

	// ListRoles は全ロールを権限付きで返します。
	ListRoles(ctx context.Context) ([]entity.Role, error)

	// FindRoleByID はIDでロールを取得します。
	FindRoleByID(ctx context.Context, id uint) (*entity.Role, error)

	// CountUsersByRole はロールIDごとの割り当てユーザー数を返します。
	CountUsersByRole(ctx context.Context) (map[uint]int64, error)

	// ListPermissions は全権限を返します。
	ListPermissions(ctx context.Context) ([]entity.Permission, error)

	// SyncRolePermissions はロールの権限集合をpermissionIDsに置き換えます。
	SyncRolePermissions(ctx context.Context, roleID uint, permissionIDs []uint) error
}

// Resolver はユーザーの実効権限を解決します。
// 権限は割り当てられた全ロールの権限の和集合です。
type Resolver struct {
	roles RoleRepository
}

// NewResolver はResolverの新しいインスタンスを生成します。
func NewResolver(roles RoleRepository) *Resolver {
	return &Resolver{roles: roles}
}

// GetPermissions はユーザーの実効権限を返します。
// 複数ロールに同じ権限が含まれる場合は最初の出現のみ残します。
func (r *Resolver) GetPermissions(ctx context.Context, userID uint) ([]entity.Permission, error) {
	roles, err := r.roles.RolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]struct{})
	var perms []entity.Permission
	for _, role := range roles {
		for _, p := range role.Permissions {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			perms = append(perms, p)
		}
	}
	return perms, nil
}

// HasPermission はユーザーが指定スラッグの権限を持つかを返します。
func (r *Resolver) HasPermission(ctx context.Context, userID uint, slug string) (bool, error) {
	perms, err := r.GetPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// HasRole はユーザーが指定スラッグのロールを持つかを返します。
func (r *Resolver) HasRole(ctx context.Context, userID uint, slug string) (bool, error) {
	roles, err := r.roles.RolesForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if role.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// HasAnyRole はユーザーが指定スラッグのいずれかのロールを持つかを返します。
func (r *Resolver) HasAnyRole(ctx context.Context, userID uint, slugs ...string) (bool, error) {
	roles, err := r.roles.RolesForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		for _, slug := range slugs {
			if role.Slug == slug {
				return true, nil
			}
		}
	}
	return false, nil
}

// IsAdmin はユーザーがadminロールを持つかを返します。
func (r *Resolver) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	return r.HasRole(ctx, userID, entity.AdminRoleSlug)
}

// Authorize はユーザーが指定の権限で操作できるかを判定します。
// adminロール保持者は個別権限に関係なく常に許可されます。
func (r *Resolver) Authorize(ctx context.Context, userID uint, permissionSlug string) (bool, error) {
	admin, err := r.IsAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	if admin {
		return true, nil
	}
	return r.HasPermission(ctx, userID, permissionSlug)
}
