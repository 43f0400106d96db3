package adapters

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"auth_backend/internal/feature/rbac/domain/entity"
)

// seedRole はシードするロールの定義です。
type seedRole struct {
	slug        string
	name        string
	description string
	isDefault   bool
}

var seedRoles = []seedRole{
	{entity.AdminRoleSlug, "Admin", "Full access to the whole system", false},
	{entity.HolderRoleSlug, "Holder", "User who holds credentials", true},
	{entity.IssuerRoleSlug, "Issuer", "User who issues credentials", false},
}

// seedPermission はシードする権限の定義です。スラッグはresource:action形式です。
type seedPermission struct {
	slug        string
	name        string
	description string
}

var seedPermissions = []seedPermission{
	{"users:view", "View Users", "View the user listing"},
	{"users:create", "Create Users", "Create new users"},
	{"users:update", "Update Users", "Update any user"},
	{"users:delete", "Delete Users", "Delete users"},
	{"roles:assign", "Assign Roles", "Assign roles to users"},
	{"roles:manage", "Manage Roles", "Manage roles and permissions"},
	{"admin:view", "View Admin Panel", "Access the administration panel"},
}

// issuerPermissionSlugs はissuerロールへ初期付与する権限です。
// 発行作業にユーザー一覧の参照が必要になります。
var issuerPermissionSlugs = []string{"users:view"}

// Seed はロール・権限マスタを投入します。冪等で、既存行は上書きせず
// 不足分のみ追加します。adminロールには全権限を紐付けます。
func Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, sr := range seedRoles {
			role := entity.Role{
				Slug:        sr.slug,
				Name:        sr.name,
				Description: sr.description,
				IsDefault:   sr.isDefault,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoNothing: true,
			}).Create(&role).Error
			if err != nil {
				return fmt.Errorf("failed to seed role %s: %w", sr.slug, err)
			}
		}

		for _, sp := range seedPermissions {
			resource, action, ok := splitSlug(sp.slug)
			if !ok {
				return fmt.Errorf("malformed permission slug %q", sp.slug)
			}
			perm := entity.Permission{
				Slug:        sp.slug,
				Name:        sp.name,
				Description: sp.description,
				Resource:    resource,
				Action:      action,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoNothing: true,
			}).Create(&perm).Error
			if err != nil {
				return fmt.Errorf("failed to seed permission %s: %w", sp.slug, err)
			}
		}

		// adminロールへ全権限を付与する
		var perms []entity.Permission
		if err := tx.Find(&perms).Error; err != nil {
			return err
		}
		allIDs := make([]uint, 0, len(perms))
		bySlug := make(map[string]uint, len(perms))
		for _, perm := range perms {
			allIDs = append(allIDs, perm.ID)
			bySlug[perm.Slug] = perm.ID
		}
		if err := linkPermissions(tx, entity.AdminRoleSlug, allIDs); err != nil {
			return err
		}

		// issuerロールには参照権限のみ付与する
		issuerIDs := make([]uint, 0, len(issuerPermissionSlugs))
		for _, slug := range issuerPermissionSlugs {
			if id, ok := bySlug[slug]; ok {
				issuerIDs = append(issuerIDs, id)
			}
		}
		return linkPermissions(tx, entity.IssuerRoleSlug, issuerIDs)
	})
}

// splitSlug はresource:action形式のスラッグを分解します。
func splitSlug(slug string) (resource, action string, ok bool) {
	for i := range slug {
		if slug[i] == ':' {
			return slug[:i], slug[i+1:], i > 0 && i < len(slug)-1
		}
	}
	return "", "", false
}

// linkPermissions はロールへ権限を紐付けます。既存の紐付けは残します。
func linkPermissions(tx *gorm.DB, roleSlug string, permissionIDs []uint) error {
	var role entity.Role
	if err := tx.Where("slug = ?", roleSlug).First(&role).Error; err != nil {
		return err
	}
	for _, permID := range permissionIDs {
		pivot := entity.PermissionRole{
			PermissionID: permID,
			RoleID:       role.ID,
		}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&pivot).Error
		if err != nil {
			return fmt.Errorf("failed to link permission %d to %s: %w", permID, roleSlug, err)
		}
	}
	return nil
}
