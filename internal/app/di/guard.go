// Package di provides dependency injection factories for creating application components.
package di

import (
	"auth_backend/internal/feature/auth/guard"
	"auth_backend/internal/platform/config"
	"auth_backend/internal/platform/oidc"
	"auth_backend/internal/platform/session"
)

// NewGuardFactory selects the guard implementation from AUTH_DRIVER and
// returns a factory binding it to per-request sessions. The driver is fixed
// for the process lifetime.
//
// provider is only consulted for the oidc driver and may be nil otherwise.
// The OIDC guard runs in strict mode: provisioning happens once, in the
// sign-in callback, so a provider session whose local user is gone fails
// authentication instead of recreating the account.
func NewGuardFactory(cfg *config.Config, store *session.Store, users guard.UserFinder, provider *oidc.Client) guard.Factory {
	if cfg.AuthDriver == config.DriverOIDC {
		return func(sess *session.Session) guard.Guard {
			return guard.NewOIDCGuard(sess, store, provider, users, nil)
		}
	}
	return func(sess *session.Session) guard.Guard {
		return guard.NewSessionGuard(sess, store, users)
	}
}

// NewOIDCClient builds the provider client from configuration. Returns nil
// when the session driver is active; the redirect endpoints are not routed
// in that case.
func NewOIDCClient(cfg *config.Config) *oidc.Client {
	if cfg.AuthDriver != config.DriverOIDC {
		return nil
	}
	return oidc.NewClient(oidc.Config{
		Endpoint:              cfg.OIDCEndpoint,
		AppID:                 cfg.OIDCAppID,
		AppSecret:             cfg.OIDCAppSecret,
		RedirectURI:           cfg.AppURL + "/auth/callback",
		PostLogoutRedirectURI: cfg.AppURL + "/login",
	})
}
