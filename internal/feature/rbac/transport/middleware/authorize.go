// Package middleware provides the authorization middleware built on the
// permission resolver.
package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	authmw "auth_backend/internal/feature/auth/transport/middleware"
)

// Authorizer はミドルウェアが必要とする権限判定を定義します。
// rbacのResolverが実装します。
type Authorizer interface {
	// Authorize はユーザーが指定権限で操作できるかを判定します。
	// admin保持者は常に許可されます。
	Authorize(ctx context.Context, userID uint, permissionSlug string) (bool, error)
	// HasAnyRole はユーザーが指定ロールのいずれかを持つかを返します。
	HasAnyRole(ctx context.Context, userID uint, slugs ...string) (bool, error)
}

// RequirePermission は指定権限のいずれかを持たないユーザーを403で拒否します。
// 複数指定時はひとつ満たせば通過します。RequireAuthの後段に置くこと。
func RequirePermission(authz Authorizer, log zerolog.Logger, slugs ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := authmw.CurrentUser(c)

		for _, slug := range slugs {
			ok, err := authz.Authorize(c.Request.Context(), user.ID, slug)
			if err != nil {
				log.Error().Err(err).Uint("user_id", user.ID).Msg("permission check failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
				return
			}
			if ok {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"message":  "Insufficient permissions",
			"required": slugs,
		})
	}
}

// RequireRole は指定ロールのいずれも持たないユーザーを403で拒否します。
func RequireRole(authz Authorizer, log zerolog.Logger, slugs ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := authmw.CurrentUser(c)

		ok, err := authz.HasAnyRole(c.Request.Context(), user.ID, slugs...)
		if err != nil {
			log.Error().Err(err).Uint("user_id", user.ID).Msg("role check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message":  "Insufficient role",
				"required": slugs,
			})
			return
		}
		c.Next()
	}
}
