// Package adapters はrbacフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"auth_backend/internal/feature/rbac/domain/entity"
	"auth_backend/internal/feature/rbac/usecase"
)

// roleGorm はRoleRepositoryインターフェースのGORM実装です。
type roleGorm struct {
	db *gorm.DB
}

var _ usecase.RoleRepository = (*roleGorm)(nil)

// NewRoleGorm は指定されたgorm.DB接続でroleGormの新しいインスタンスを生成します。
func NewRoleGorm(db *gorm.DB) *roleGorm {
	return &roleGorm{db: db}
}

// RolesForUser はユーザーのロールを権限付きで、割り当て日時の昇順で返します。
func (r *roleGorm) RolesForUser(ctx context.Context, userID uint) ([]entity.Role, error) {
	var roles []entity.Role
	err := r.db.WithContext(ctx).
		Joins("JOIN role_user ON role_user.role_id = roles.id").
		Where("role_user.user_id = ?", userID).
		Order("role_user.assigned_at ASC").
		Preload("Permissions").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// DefaultRoles は新規ユーザー用のデフォルトロールを返します。
func (r *roleGorm) DefaultRoles(ctx context.Context) ([]entity.Role, error) {
	var roles []entity.Role
	err := r.db.WithContext(ctx).
		Where("is_default = ?", true).
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// AssignRole はロールを付与します。既に同じ割り当てが存在する場合は
// 何もせず成功を返します（冪等）。
func (r *roleGorm) AssignRole(ctx context.Context, userID, roleID uint, assignedBy *uint) error {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.RoleUser{}).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	pivot := entity.RoleUser{
		RoleID:     roleID,
		UserID:     userID,
		AssignedBy: assignedBy,
		AssignedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&pivot).Error; err != nil {
		// 並行実行で同じ割り当てが先に入った場合も冪等に扱う
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	return nil
}

// SyncUserRoles はユーザーのロール集合を置き換えます。
// 削除と挿入を単一トランザクションで行います。
func (r *roleGorm) SyncUserRoles(ctx context.Context, userID uint, roleIDs []uint, assignedBy *uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&entity.RoleUser{}).Error; err != nil {
			return err
		}
		now := time.Now()
		for _, roleID := range roleIDs {
			pivot := entity.RoleUser{
				RoleID:     roleID,
				UserID:     userID,
				AssignedBy: assignedBy,
				AssignedAt: now,
			}
			if err := tx.Create(&pivot).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListRoles は全ロールを権限付きでスラッグ順に返します。
func (r *roleGorm) ListRoles(ctx context.Context) ([]entity.Role, error) {
	var roles []entity.Role
	err := r.db.WithContext(ctx).
		Preload("Permissions").
		Order("slug ASC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// FindRoleByID はIDでロールを権限付きで取得します。
func (r *roleGorm) FindRoleByID(ctx context.Context, id uint) (*entity.Role, error) {
	var role entity.Role
	err := r.db.WithContext(ctx).
		Preload("Permissions").
		First(&role, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

// CountUsersByRole はロールIDごとの割り当てユーザー数を返します。
func (r *roleGorm) CountUsersByRole(ctx context.Context) (map[uint]int64, error) {
	type row struct {
		RoleID uint
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&entity.RoleUser{}).
		Select("role_id, COUNT(*) AS count").
		Group("role_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.RoleID] = row.Count
	}
	return counts, nil
}

// ListPermissions は全権限をスラッグ順に返します。
func (r *roleGorm) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	var perms []entity.Permission
	err := r.db.WithContext(ctx).
		Order("slug ASC").
		Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

// SyncRolePermissions はロールの権限集合を置き換えます。
func (r *roleGorm) SyncRolePermissions(ctx context.Context, roleID uint, permissionIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&entity.PermissionRole{}).Error; err != nil {
			return err
		}
		for _, permID := range permissionIDs {
			pivot := entity.PermissionRole{
				PermissionID: permID,
				RoleID:       roleID,
			}
			if err := tx.Create(&pivot).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
