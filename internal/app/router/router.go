package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"auth_backend/internal/feature/auth/guard"
	authhandler "auth_backend/internal/feature/auth/transport/handler"
	authmw "auth_backend/internal/feature/auth/transport/middleware"
	rbachandler "auth_backend/internal/feature/rbac/transport/handler"
	rbacmw "auth_backend/internal/feature/rbac/transport/middleware"
	"auth_backend/internal/platform/session"
	"auth_backend/internal/shared/ratelimiter"
)

// Deps bundles everything the route table needs.
type Deps struct {
	Log          zerolog.Logger
	SessionStore *session.Store
	Redis        *redis.Client
	CookieSecure bool

	Guards guard.Factory
	Authz  rbacmw.Authorizer

	Auth              *authhandler.AuthHandler
	PasswordReset     *authhandler.PasswordResetHandler
	EmailVerification *authhandler.EmailVerificationHandler
	// OAuth is nil when the session driver is active; the provider
	// endpoints are only routed for the oidc driver.
	OAuth *authhandler.OAuthHandler

	Admin *rbachandler.AdminHandler
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.Use(session.Middleware(d.SessionStore, d.Log, d.CookieSecure))

	throttle := func(name string, limit int, window time.Duration) gin.HandlerFunc {
		return ratelimiter.Throttle(d.Redis, d.Log, name, limit, window)
	}

	// 認証不要
	r.POST("/register", throttle("register", 3, time.Hour), d.Auth.Register)
	r.POST("/login", throttle("login", 10, 15*time.Minute), d.Auth.Login)
	r.POST("/forgot-password", throttle("forgot", 3, time.Hour), d.PasswordReset.Forgot)
	r.GET("/reset-password/:token", d.PasswordReset.Validate)
	r.POST("/reset-password", throttle("reset", 5, 15*time.Minute), d.PasswordReset.Reset)
	// メールは別デバイスで開かれ得るため確認リンクは未認証で受け付ける
	r.GET("/verify-email/:token", d.EmailVerification.Verify)

	// 外部IDプロバイダー経由のフロー（oidcドライバー時のみ）
	if d.OAuth != nil {
		r.GET("/auth/sign-in", d.OAuth.SignIn)
		r.GET("/auth/callback", d.OAuth.Callback)
		r.GET("/auth/sign-out", d.OAuth.SignOut)
	}

	// 認証必須のルート
	auth := r.Group("/")
	auth.Use(authmw.RequireAuth(d.Guards, d.Log))
	{
		auth.POST("/logout", d.Auth.Logout)
		auth.GET("/me", d.Auth.Me)
		auth.POST("/verify-email/resend",
			throttle("resend", 3, 15*time.Minute), d.EmailVerification.Resend)

		// 管理者向け。パネル全体をadmin:viewで、各操作を個別権限でガードする
		admin := auth.Group("/admin")
		admin.Use(rbacmw.RequirePermission(d.Authz, d.Log, "admin:view"))
		{
			admin.GET("/users",
				rbacmw.RequirePermission(d.Authz, d.Log, "users:view"), d.Admin.ListUsers)
			admin.PUT("/users/:id/roles",
				rbacmw.RequirePermission(d.Authz, d.Log, "roles:assign"), d.Admin.SyncUserRoles)
			admin.GET("/roles",
				rbacmw.RequirePermission(d.Authz, d.Log, "roles:manage"), d.Admin.ListRoles)
			admin.GET("/permissions",
				rbacmw.RequirePermission(d.Authz, d.Log, "roles:manage"), d.Admin.ListPermissions)
			admin.PUT("/roles/:id/permissions",
				rbacmw.RequirePermission(d.Authz, d.Log, "roles:manage"), d.Admin.SyncRolePermissions)
		}
	}

	return r
}
