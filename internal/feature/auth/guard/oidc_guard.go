package guard

import (
	"context"
	"errors"

	"auth_backend/internal/feature/auth/domain"
	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/usecase"
	"auth_backend/internal/platform/session"
)

// ProviderClient is the slice of the OAuth provider integration the guard
// needs: whether the session holds provider tokens, and the verified
// claims of the ID token stored in it.
type ProviderClient interface {
	IsAuthenticated(sess *session.Session) bool
	IDTokenClaims(ctx context.Context, sess *session.Session) (*domain.Claims, error)
	ClearSession(sess *session.Session)
}

// Provisioner maps provider claims onto a local user, creating the record
// when none exists yet.
type Provisioner interface {
	ProvisionFromClaims(ctx context.Context, claims *domain.Claims) (*entity.User, error)
}

// OIDCGuard authenticates via an external OAuth provider. The provider
// session (tokens, sign-in state) lives in the same server-side session
// the local guard uses.
//
// With a Provisioner the guard creates local users on first sight of a new
// identity. Without one it runs strict: claims that resolve to no local
// user fail with ErrUserNotProvisioned.
type OIDCGuard struct {
	sess        *session.Session
	store       *session.Store
	provider    ProviderClient
	users       UserFinder
	provisioner Provisioner

	user *entity.User
}

var _ Guard = (*OIDCGuard)(nil)

// NewOIDCGuard builds an OIDC guard bound to one request's session.
// provisioner may be nil for strict mode.
func NewOIDCGuard(sess *session.Session, store *session.Store, provider ProviderClient, users UserFinder, provisioner Provisioner) *OIDCGuard {
	return &OIDCGuard{
		sess:        sess,
		store:       store,
		provider:    provider,
		users:       users,
		provisioner: provisioner,
	}
}

// Driver returns DriverOIDC.
func (g *OIDCGuard) Driver() string { return DriverOIDC }

// Authenticate resolves the principal in four steps: confirm the session
// holds provider tokens, read the ID token claims, extract an identity
// from them, then map the identity to a local user.
func (g *OIDCGuard) Authenticate(ctx context.Context) (*entity.User, error) {
	if g.user != nil {
		return g.user, nil
	}

	if !g.provider.IsAuthenticated(g.sess) {
		return nil, ErrUnauthenticated
	}

	claims, err := g.provider.IDTokenClaims(ctx, g.sess)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	identity := claims.Identity()
	if identity == "" {
		return nil, ErrIdentityNotFound
	}

	var user *entity.User
	if g.provisioner != nil {
		user, err = g.provisioner.ProvisionFromClaims(ctx, claims)
		if err != nil {
			return nil, err
		}
	} else {
		user, err = g.users.FindByEmail(ctx, identity)
		if err != nil {
			if errors.Is(err, usecase.ErrUserNotFound) {
				return nil, ErrUserNotProvisioned
			}
			return nil, err
		}
	}

	g.user = user
	return user, nil
}

// Check reports whether the provider session resolves to a local user.
func (g *OIDCGuard) Check(ctx context.Context) bool {
	_, err := g.Authenticate(ctx)
	return err == nil
}

// Login binds the already-resolved user after the provider callback. The
// session id is regenerated; the provider tokens were stored by the
// callback handler and survive the regeneration.
func (g *OIDCGuard) Login(ctx context.Context, user *entity.User, remember bool) error {
	if err := g.store.Regenerate(ctx, g.sess); err != nil {
		return err
	}
	if remember {
		g.sess.Put(session.RememberKey, "1")
	}
	g.user = user
	return nil
}

// Logout drops the provider tokens and the whole session. The provider-side
// session is ended separately via the sign-out redirect.
func (g *OIDCGuard) Logout(ctx context.Context) error {
	g.provider.ClearSession(g.sess)
	g.sess.Clear()
	g.user = nil
	return g.store.Delete(ctx, g.sess.ID)
}

// UserOrFail returns the principal established by Authenticate or Login.
func (g *OIDCGuard) UserOrFail() (*entity.User, error) {
	if g.user == nil {
		return nil, ErrUnauthenticated
	}
	return g.user, nil
}
