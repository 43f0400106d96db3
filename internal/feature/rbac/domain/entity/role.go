// Package entity defines the role and permission model.
package entity

import "time"

// Well-known role slugs. Roles flagged IsDefault are granted to every
// newly created account; AdminRoleSlug short-circuits permission checks.
const (
	AdminRoleSlug  = "admin"
	HolderRoleSlug = "holder"
	IssuerRoleSlug = "issuer"
)

// Role is a named bundle of permissions.
type Role struct {
	ID          uint   `gorm:"primaryKey"`
	Slug        string `gorm:"size:64;uniqueIndex;not null"`
	Name        string `gorm:"size:128;not null"`
	Description string

	// IsDefault marks roles assigned automatically on account creation.
	IsDefault bool `gorm:"not null;default:false"`

	Permissions []Permission `gorm:"many2many:permission_role"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Permission is a single grantable capability, identified by a
// "resource:action" slug such as "users:view".
type Permission struct {
	ID          uint   `gorm:"primaryKey"`
	Slug        string `gorm:"size:128;uniqueIndex;not null"`
	Name        string `gorm:"size:128;not null"`
	Description string
	Resource    string `gorm:"size:64;not null;index"`
	Action      string `gorm:"size:64;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoleUser is the role assignment pivot. Assignments carry an audit trail
// of who granted the role and when.
type RoleUser struct {
	RoleID uint `gorm:"primaryKey"`
	UserID uint `gorm:"primaryKey;index"`

	// AssignedBy is the administrator who granted the role. Nil for
	// system-made assignments (registration defaults, seeding).
	AssignedBy *uint
	AssignedAt time.Time
}

// TableName keeps the pivot on its historical name.
func (RoleUser) TableName() string { return "role_user" }

// PermissionRole is the permission-to-role pivot.
type PermissionRole struct {
	PermissionID uint `gorm:"primaryKey"`
	RoleID       uint `gorm:"primaryKey"`

	CreatedAt time.Time
}

// TableName keeps the pivot on its historical name.
func (PermissionRole) TableName() string { return "permission_role" }
