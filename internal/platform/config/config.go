// Package config loads application configuration from environment variables.
// Configuration is read once at process startup and treated as immutable
// afterwards; no component re-reads the environment at request time.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// AuthDriver identifies which guard implementation the application runs with.
const (
	DriverSession = "session"
	DriverOIDC    = "oidc"
)

// Config holds every runtime setting of the application.
type Config struct {
	AppURL string `env:"APP_URL" envDefault:"http://localhost:8080"`
	Port   string `env:"PORT"    envDefault:"8080"`

	// AuthDriver selects the default guard ("session" or "oidc").
	AuthDriver string `env:"AUTH_DRIVER" envDefault:"session"`

	DBHost        string `env:"DB_HOST"     envDefault:"127.0.0.1"`
	DBPort        string `env:"DB_PORT"     envDefault:"5432"`
	DBUser        string `env:"DB_USER"     envDefault:"postgres"`
	DBPassword    string `env:"DB_PASSWORD"`
	DBName        string `env:"DB_NAME"     envDefault:"auth_backend"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"false"`

	RedisHost     string `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM_ADDRESS" envDefault:"noreply@localhost"`

	// Account lockout policy.
	MaxLoginAttempts int           `env:"MAX_LOGIN_ATTEMPTS" envDefault:"5"`
	LockoutDuration  time.Duration `env:"LOCKOUT_DURATION"   envDefault:"30m"`

	// Single-use token lifetimes.
	PasswordResetExpiry     time.Duration `env:"PASSWORD_RESET_EXPIRY"     envDefault:"1h"`
	EmailVerificationExpiry time.Duration `env:"EMAIL_VERIFICATION_EXPIRY" envDefault:"24h"`

	// Session lifetimes. RememberTTL applies when the user asks to stay
	// signed in.
	SessionTTL   time.Duration `env:"SESSION_TTL"  envDefault:"2h"`
	RememberTTL  time.Duration `env:"REMEMBER_TTL" envDefault:"720h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`

	// External OAuth identity provider. Required only when AUTH_DRIVER=oidc.
	OIDCEndpoint  string `env:"OIDC_ENDPOINT"`
	OIDCAppID     string `env:"OIDC_APP_ID"`
	OIDCAppSecret string `env:"OIDC_APP_SECRET"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.AuthDriver != DriverSession && cfg.AuthDriver != DriverOIDC {
		return nil, fmt.Errorf("unknown AUTH_DRIVER %q", cfg.AuthDriver)
	}
	if cfg.AuthDriver == DriverOIDC {
		if cfg.OIDCEndpoint == "" || cfg.OIDCAppID == "" || cfg.OIDCAppSecret == "" {
			return nil, fmt.Errorf("AUTH_DRIVER=oidc requires OIDC_ENDPOINT, OIDC_APP_ID and OIDC_APP_SECRET")
		}
	}

	return &cfg, nil
}
