// Package dto defines data transfer objects for the rbac feature's HTTP
// transport layer.
package dto

import (
	"time"

	authdto "auth_backend/internal/feature/auth/transport/http/dto"
	"auth_backend/internal/feature/rbac/domain/entity"
)

// SyncRolesReq represents the request body for the admin role assignment
// endpoint. The listed roles replace the user's current set.
type SyncRolesReq struct {
	RoleIDs []uint `json:"roleIds" binding:"required"`
}

// SyncPermissionsReq represents the request body for the admin role
// permission endpoint.
type SyncPermissionsReq struct {
	PermissionIDs []uint `json:"permissionIds" binding:"required"`
}

// PermissionResponse is the public representation of a permission.
type PermissionResponse struct {
	ID          uint   `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
}

// NewPermissionResponse maps a permission entity to its representation.
func NewPermissionResponse(p entity.Permission) PermissionResponse {
	return PermissionResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		Resource:    p.Resource,
		Action:      p.Action,
	}
}

// RoleResponse is the public representation of a role with its permissions.
type RoleResponse struct {
	ID          uint                 `json:"id"`
	Slug        string               `json:"slug"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	IsDefault   bool                 `json:"isDefault"`
	Permissions []PermissionResponse `json:"permissions"`
	UserCount   int64                `json:"userCount"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// NewRoleResponse maps a role entity to its representation.
func NewRoleResponse(r entity.Role, userCount int64) RoleResponse {
	perms := make([]PermissionResponse, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, NewPermissionResponse(p))
	}
	return RoleResponse{
		ID:          r.ID,
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		IsDefault:   r.IsDefault,
		Permissions: perms,
		UserCount:   userCount,
		CreatedAt:   r.CreatedAt,
	}
}

// UserWithRolesResponse is a user row in the admin listing.
type UserWithRolesResponse struct {
	authdto.UserResponse
	Roles []RoleResponse `json:"roles"`
}

// PaginatedUsersResponse is the admin user listing payload.
type PaginatedUsersResponse struct {
	Users   []UserWithRolesResponse `json:"users"`
	Total   int64                   `json:"total"`
	Page    int                     `json:"page"`
	PerPage int                     `json:"perPage"`
}
