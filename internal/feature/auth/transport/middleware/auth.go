// Package middleware provides the authentication middleware built on the
// guard abstraction.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/guard"
	"auth_backend/internal/feature/auth/transport/http/dto"
	"auth_backend/internal/platform/session"
)

// Gin context keys set by RequireAuth.
const (
	ContextUser  = "authUser"
	ContextGuard = "authGuard"
)

// RequireAuth builds the guard for the request's session and authenticates
// it. On success the resolved user and the guard instance are stored in the
// Gin context; on failure the request is aborted with 401. Every guard
// failure maps to the same generic response.
func RequireAuth(factory guard.Factory, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		g := factory(session.FromContext(c))

		user, err := g.Authenticate(c.Request.Context())
		if err != nil {
			log.Debug().Err(err).Str("path", c.FullPath()).Msg("authentication failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextGuard, g)
		c.Next()
	}
}

// CurrentUser returns the authenticated user placed by RequireAuth.
// Panics when called on a route that does not run RequireAuth first.
func CurrentUser(c *gin.Context) *entity.User {
	return c.MustGet(ContextUser).(*entity.User)
}

// CurrentGuard returns the guard instance placed by RequireAuth.
func CurrentGuard(c *gin.Context) guard.Guard {
	return c.MustGet(ContextGuard).(guard.Guard)
}

// RequireVerifiedEmail rejects users whose email address is unverified.
// Federated principals are exempt: their provider already verified the
// address before issuing claims.
func RequireVerifiedEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentGuard(c).Driver() == guard.DriverOIDC {
			c.Next()
			return
		}
		if !CurrentUser(c).IsEmailVerified() {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Error: "email verification required"})
			return
		}
		c.Next()
	}
}
