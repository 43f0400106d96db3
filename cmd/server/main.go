package main

import (
	"context"

	"github.com/joho/godotenv"

	"auth_backend/internal/app/di"
	"auth_backend/internal/app/router"
	authadapters "auth_backend/internal/feature/auth/adapters"
	authhandler "auth_backend/internal/feature/auth/transport/handler"
	authusecase "auth_backend/internal/feature/auth/usecase"
	rbacadapters "auth_backend/internal/feature/rbac/adapters"
	rbachandler "auth_backend/internal/feature/rbac/transport/handler"
	rbacusecase "auth_backend/internal/feature/rbac/usecase"
	"auth_backend/internal/platform/config"
	"auth_backend/internal/platform/db"
	"auth_backend/internal/platform/logger"
	"auth_backend/internal/platform/mail"
	"auth_backend/internal/platform/password"
	platformredis "auth_backend/internal/platform/redis"
	"auth_backend/internal/platform/session"
	"auth_backend/internal/shared/validation"
)

func main() {
	// ローカル開発用。ファイルが無ければ環境変数をそのまま使う
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := validation.RegisterStrongPassword(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	// DB
	conn, err := db.Open(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if cfg.RunMigrations {
		if err := rbacadapters.Seed(context.Background(), conn); err != nil {
			log.Fatal().Err(err).Msg("failed to seed roles and permissions")
		}
	}

	// Redis（セッションとレートリミットの置き場）
	rdb, err := platformredis.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}()

	// Repository
	userRepo := authadapters.NewUserGorm(conn)
	resetTokenRepo := authadapters.NewPasswordResetTokenGorm(conn)
	verifyTokenRepo := authadapters.NewEmailVerificationTokenGorm(conn)
	roleRepo := rbacadapters.NewRoleGorm(conn)

	// Platform
	hasher := password.NewHasher()
	sessionStore := session.NewStore(rdb, "session", cfg.SessionTTL, cfg.RememberTTL)
	notifier := mail.NewNotifier(mail.NewMailer(cfg), cfg.AppURL)

	// Usecase
	resolver := rbacusecase.NewResolver(roleRepo)
	roleManager := rbacusecase.NewRoleManager(roleRepo, log)
	lockout := authusecase.NewLockoutPolicy(userRepo, cfg.MaxLoginAttempts, cfg.LockoutDuration)
	resetTokens := authusecase.NewTokenIssuer(resetTokenRepo, hasher, cfg.PasswordResetExpiry)
	verifyTokens := authusecase.NewTokenIssuer(verifyTokenRepo, hasher, cfg.EmailVerificationExpiry)

	authUC, err := authusecase.NewAuthUsecase(
		userRepo, hasher, lockout, resetTokens, verifyTokens, roleManager, notifier, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build auth usecase")
	}

	// Guard
	provider := di.NewOIDCClient(cfg)
	guards := di.NewGuardFactory(cfg, sessionStore, userRepo, provider)

	// Handler
	authH := authhandler.NewAuthHandler(authUC, guards, log)
	resetH := authhandler.NewPasswordResetHandler(authUC, log)
	verifyH := authhandler.NewEmailVerificationHandler(authUC, guards, log)
	var oauthH *authhandler.OAuthHandler
	if provider != nil {
		oauthH = authhandler.NewOAuthHandler(provider, authUC, guards, log)
	}
	adminH := rbachandler.NewAdminHandler(userRepo, roleRepo, roleManager, log)

	r := router.NewRouter(router.Deps{
		Log:               log,
		SessionStore:      sessionStore,
		Redis:             rdb,
		CookieSecure:      cfg.CookieSecure,
		Guards:            guards,
		Authz:             resolver,
		Auth:              authH,
		PasswordReset:     resetH,
		EmailVerification: verifyH,
		OAuth:             oauthH,
		Admin:             adminH,
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
