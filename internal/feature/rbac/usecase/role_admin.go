package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// 管理操作で返す代表的なエラー。
var (
	// ErrSelfAssignment は管理者が自分自身のロールを変更しようとした場合の
	// エラーです。権限昇格・自己降格事故の防止のため禁止しています。
	ErrSelfAssignment = errors.New("cannot modify your own roles")

	// ErrRoleNotFound は指定されたロールが存在しない場合のエラーです。
	ErrRoleNotFound = errors.New("role not found")
)

// RoleManager はロール割り当ての管理操作を提供します。
type RoleManager struct {
	roles RoleRepository
	log   zerolog.Logger
}

// NewRoleManager はRoleManagerの新しいインスタンスを生成します。
func NewRoleManager(roles RoleRepository, log zerolog.Logger) *RoleManager {
	return &RoleManager{roles: roles, log: log}
}

// SyncUserRoles は対象ユーザーのロール集合を置き換えます。
// actorIDは操作を行う管理者のIDで、割り当て監査情報として記録されます。
// 自分自身への操作はErrSelfAssignmentで拒否します。
func (m *RoleManager) SyncUserRoles(ctx context.Context, actorID, targetUserID uint, roleIDs []uint) error {
	if actorID == targetUserID {
		return ErrSelfAssignment
	}

	// 存在しないロールIDを先に検出する
	for _, id := range roleIDs {
		if _, err := m.roles.FindRoleByID(ctx, id); err != nil {
			return err
		}
	}

	if err := m.roles.SyncUserRoles(ctx, targetUserID, roleIDs, &actorID); err != nil {
		return err
	}

	m.log.Info().
		Uint("actor_id", actorID).
		Uint("user_id", targetUserID).
		Uints("role_ids", roleIDs).
		Msg("synced user roles")
	return nil
}

// AssignDefaultRoles は新規ユーザーにデフォルトロールを付与します。
// システムによる付与のためassigned_byは記録しません。
func (m *RoleManager) AssignDefaultRoles(ctx context.Context, userID uint) error {
	defaults, err := m.roles.DefaultRoles(ctx)
	if err != nil {
		return err
	}
	for _, role := range defaults {
		if err := m.roles.AssignRole(ctx, userID, role.ID, nil); err != nil {
			return err
		}
	}
	return nil
}

// SyncRolePermissions はロールの権限集合を置き換えます。
func (m *RoleManager) SyncRolePermissions(ctx context.Context, actorID, roleID uint, permissionIDs []uint) error {
	if _, err := m.roles.FindRoleByID(ctx, roleID); err != nil {
		return err
	}

	if err := m.roles.SyncRolePermissions(ctx, roleID, permissionIDs); err != nil {
		return err
	}

	m.log.Info().
		Uint("actor_id", actorID).
		Uint("role_id", roleID).
		Uints("permission_ids", permissionIDs).
		Msg("synced role permissions")
	return nil
}
