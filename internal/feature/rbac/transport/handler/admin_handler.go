// Package handler はrbacフィーチャーの管理用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	authentity "auth_backend/internal/feature/auth/domain/entity"
	authdto "auth_backend/internal/feature/auth/transport/http/dto"
	authmw "auth_backend/internal/feature/auth/transport/middleware"
	"auth_backend/internal/feature/rbac/domain/entity"
	"auth_backend/internal/feature/rbac/transport/http/dto"
	"auth_backend/internal/feature/rbac/usecase"
)

// UserLister は管理画面向けのユーザー一覧取得を定義します。
// authフィーチャーのユーザーリポジトリが実装します。
type UserLister interface {
	List(ctx context.Context, search string, page, perPage int) ([]authentity.User, int64, error)
}

// RoleDirectory はロール・権限の参照操作を定義します。
type RoleDirectory interface {
	ListRoles(ctx context.Context) ([]entity.Role, error)
	ListPermissions(ctx context.Context) ([]entity.Permission, error)
	CountUsersByRole(ctx context.Context) (map[uint]int64, error)
	RolesForUser(ctx context.Context, userID uint) ([]entity.Role, error)
}

// RoleAdmin はロール割り当ての変更操作を定義します。
type RoleAdmin interface {
	SyncUserRoles(ctx context.Context, actorID, targetUserID uint, roleIDs []uint) error
	SyncRolePermissions(ctx context.Context, actorID, roleID uint, permissionIDs []uint) error
}

// AdminHandler はユーザー・ロール管理のHTTPリクエストを処理します。
type AdminHandler struct {
	users UserLister
	dir   RoleDirectory
	admin RoleAdmin
	log   zerolog.Logger
}

// NewAdminHandler はAdminHandlerの新しいインスタンスを生成します。
func NewAdminHandler(users UserLister, dir RoleDirectory, admin RoleAdmin, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{users: users, dir: dir, admin: admin, log: log}
}

// ListUsers はユーザーを検索・ページングし、各ユーザーのロール付きで
// 返します。クエリパラメータ: search, page, perPage。
func (h *AdminHandler) ListUsers(c *gin.Context) {
	search := c.Query("search")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "25"))

	users, total, err := h.users.List(c.Request.Context(), search, page, perPage)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, authdto.ErrorResponse{Error: "internal error"})
		return
	}

	rows := make([]dto.UserWithRolesResponse, 0, len(users))
	for i := range users {
		roles, err := h.dir.RolesForUser(c.Request.Context(), users[i].ID)
		if err != nil {
			h.log.Error().Err(err).Uint("user_id", users[i].ID).Msg("failed to load roles")
			c.JSON(http.StatusInternalServerError, authdto.ErrorResponse{Error: "internal error"})
			return
		}
		row := dto.UserWithRolesResponse{UserResponse: authdto.NewUserResponse(&users[i])}
		row.Roles = make([]dto.RoleResponse, 0, len(roles))
		for _, role := range roles {
			row.Roles = append(row.Roles, dto.NewRoleResponse(role, 0))
		}
		rows = append(rows, row)
	}

	c.JSON(http.StatusOK, dto.PaginatedUsersResponse{
		Users:   rows,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// SyncUserRoles は対象ユーザーのロール集合を置き換えます。
// 自分自身のロール変更は400で拒否します。
func (h *AdminHandler) SyncUserRoles(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, authdto.ErrorResponse{Error: "invalid user id"})
		return
	}

	var req dto.SyncRolesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, authdto.NewValidationErrorResponse(err))
		return
	}

	actor := authmw.CurrentUser(c)
	err = h.admin.SyncUserRoles(c.Request.Context(), actor.ID, uint(targetID), req.RoleIDs)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrSelfAssignment):
			c.JSON(http.StatusBadRequest, authdto.ErrorResponse{Error: "cannot modify your own roles"})
		case errors.Is(err, usecase.ErrRoleNotFound):
			c.JSON(http.StatusNotFound, authdto.ErrorResponse{Error: "role not found"})
		default:
			h.log.Error().Err(err).Uint("user_id", uint(targetID)).Msg("failed to sync user roles")
			c.JSON(http.StatusInternalServerError, authdto.ErrorResponse{Error: "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, authdto.MessageResponse{Message: "ok"})
}

// ListRoles は全ロールを権限・割り当て人数付きで返します。
func (h *AdminHandler) ListRoles(c *gin.Context) {
	roles, err := h.dir.ListRoles(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list roles")
		c.JSON(http.StatusInternalServerError, authdto.ErrorResponse{Error: "internal error"})
		return
	}
	counts, err := h.dir.CountUsersByRole(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to count role assignments")
		c.JSON(http.StatusInternalServerError, authdto.ErrorResponse{Error: "internal error"})
		return
	}

	out := make([]dto.RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, dto.NewRoleResponse(role, counts[role.ID]))
	}
	c.JSON(http.StatusOK, gin.H{"roles": out})
}

// ListPermissions は全権限を返します。
func (h *AdminHandler) ListPermissions(c *gin.Context) {
	perms, err := h.dir.ListPermissions(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list permissions")
		c.JSON(http.StatusInternalServerError, authdto.ErrorResponse{Error: "internal error"})
		return
	}

	out := make([]dto.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, dto.NewPermissionResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"permissions": out})
}

// SyncRolePermissions はロールの権限集合を置き換えます。
func (h *AdminHandler) SyncRolePermissions(c *gin.Context) {
	roleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, authdto.ErrorResponse{Error: "invalid role id"})
		return
	}

	var req dto.SyncPermissionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, authdto.NewValidationErrorResponse(err))
		return
	}

	actor := authmw.CurrentUser(c)
	err = h.admin.SyncRolePermissions(c.Request.Context(), actor.ID, uint(roleID), req.PermissionIDs)
	if err != nil {
		if errors.Is(err, usecase.ErrRoleNotFound) {
			c.JSON(http.StatusNotFound, authdto.ErrorResponse{Error: "role not found"})
			return
		}
		h.log.Error().Err(err).Uint("role_id", uint(roleID)).Msg("failed to sync role permissions")
		c.JSON(http.StatusInternalServerError, authdto.ErrorResponse{Error: "internal error"})
		return
	}

	c.JSON(http.StatusOK, authdto.MessageResponse{Message: "ok"})
}
