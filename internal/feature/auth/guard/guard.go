// Package guard implements the authentication guards: strategies for
// establishing the principal bound to a request.
//
// Two drivers share one contract: SessionGuard authenticates from a local
// server-side session, OIDCGuard delegates identity to an external OAuth
// provider. Which driver runs is decided once at startup from
// configuration; call sites never inspect the concrete type.
package guard

import (
	"context"
	"errors"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/platform/session"
)

// Driver identifiers. Downstream policy branches on these, e.g. the
// verified-email requirement is skipped for federated principals.
const (
	DriverSession = "session"
	DriverOIDC    = "oidc"
)

// Guard-level failures. All of them surface to callers as a generic
// unauthorized response; the distinct values exist for logging and tests.
var (
	// ErrUnauthenticated means no valid session or provider state backs the
	// request.
	ErrUnauthenticated = errors.New("unauthorized access")

	// ErrIdentityNotFound means the provider claims carry no usable
	// identity (no email and no username claim).
	ErrIdentityNotFound = errors.New("identity not found in claims")

	// ErrUserNotProvisioned means the claims resolve to an identity with no
	// local user record while the guard runs in strict mode.
	ErrUserNotProvisioned = errors.New("user not provisioned")
)

// Guard is the authentication contract shared by both drivers.
type Guard interface {
	// Driver returns the guard's identifier string.
	Driver() string

	// Authenticate resolves the request's principal or fails with a
	// guard-level error.
	Authenticate(ctx context.Context) (*entity.User, error)

	// Check reports whether Authenticate would succeed.
	Check(ctx context.Context) bool

	// Login binds user as the session's principal. remember extends the
	// session lifetime.
	Login(ctx context.Context, user *entity.User, remember bool) error

	// Logout clears the principal and all authentication state from the
	// session.
	Logout(ctx context.Context) error

	// UserOrFail returns the principal resolved by a prior Authenticate or
	// Login on this instance.
	UserOrFail() (*entity.User, error)
}

// Factory builds a guard for one request's session. The concrete driver is
// fixed when the factory is constructed (see app/di); a guard instance must
// not outlive its request.
type Factory func(sess *session.Session) Guard

// UserFinder is the slice of the user repository the guards need.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}
