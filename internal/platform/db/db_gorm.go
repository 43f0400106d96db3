package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	authentity "auth_backend/internal/feature/auth/domain/entity"
	rbacentity "auth_backend/internal/feature/rbac/domain/entity"
	"auth_backend/internal/platform/config"
)

// Open connects to Postgres with a bounded retry loop and optionally runs
// schema migrations.
func Open(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	var (
		conn *gorm.DB
		err  error
	)

	// コンテナ起動直後はDBがまだ接続を受け付けないことがあるため、60秒までリトライする
	deadline := time.Now().Add(60 * time.Second)
	for {
		conn, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after 60s: %w", err)
		}
		log.Warn().Err(err).Msg("DB connect failed, retrying...")
		time.Sleep(3 * time.Second)
	}

	if cfg.RunMigrations {
		if err := Migrate(conn); err != nil {
			return nil, err
		}
		log.Info().Msg("database migrations applied")
	}

	return conn, nil
}

// Migrate registers the audited join tables and creates or updates the
// schema. It is shared by the server, the cleanup job and the test helpers.
func Migrate(conn *gorm.DB) error {
	// permission_role carries timestamps, so it must be registered as an
	// explicit join model before AutoMigrate sees the association.
	if err := conn.SetupJoinTable(&rbacentity.Role{}, "Permissions", &rbacentity.PermissionRole{}); err != nil {
		return fmt.Errorf("failed to set up permission_role join table: %w", err)
	}

	if err := conn.AutoMigrate(
		&authentity.User{},
		&authentity.PasswordResetToken{},
		&authentity.EmailVerificationToken{},
		&rbacentity.Permission{},
		&rbacentity.Role{},
		&rbacentity.RoleUser{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}
