// Command cleanup deletes expired password reset and email verification
// tokens. Run it periodically (cron or a scheduler sidecar); expired rows
// are dead weight that slows the live-token scan.
package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"

	authadapters "auth_backend/internal/feature/auth/adapters"
	"auth_backend/internal/platform/config"
	"auth_backend/internal/platform/db"
	"auth_backend/internal/platform/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	conn, err := db.Open(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	ctx := context.Background()
	now := time.Now()

	resetRepo := authadapters.NewPasswordResetTokenGorm(conn)
	verifyRepo := authadapters.NewEmailVerificationTokenGorm(conn)

	resetDeleted, err := resetRepo.DeleteExpired(ctx, now)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to delete expired password reset tokens")
	}
	verifyDeleted, err := verifyRepo.DeleteExpired(ctx, now)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to delete expired email verification tokens")
	}

	log.Info().
		Int64("password_reset", resetDeleted).
		Int64("email_verification", verifyDeleted).
		Msg("expired tokens deleted")
}
