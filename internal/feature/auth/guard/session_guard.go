package guard

import (
	"context"
	"errors"
	"strconv"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/usecase"
	"auth_backend/internal/platform/session"
)

// userIDKey is the session key holding the authenticated user's id.
const userIDKey = "auth.user_id"

// SessionGuard authenticates against the local user table via a
// server-side session. Login stores the user id in the session after
// regenerating its id; Authenticate resolves the id back to a user row.
type SessionGuard struct {
	sess  *session.Session
	store *session.Store
	users UserFinder

	user *entity.User
}

var _ Guard = (*SessionGuard)(nil)

// NewSessionGuard builds a session guard bound to one request's session.
func NewSessionGuard(sess *session.Session, store *session.Store, users UserFinder) *SessionGuard {
	return &SessionGuard{sess: sess, store: store, users: users}
}

// Driver returns DriverSession.
func (g *SessionGuard) Driver() string { return DriverSession }

// Authenticate resolves the principal from the session's stored user id.
// A session referencing a deleted user is treated as unauthenticated.
func (g *SessionGuard) Authenticate(ctx context.Context) (*entity.User, error) {
	if g.user != nil {
		return g.user, nil
	}

	raw, ok := g.sess.Get(userIDKey)
	if !ok {
		return nil, ErrUnauthenticated
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := g.users.FindByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	g.user = user
	return user, nil
}

// Check reports whether the session carries a valid principal.
func (g *SessionGuard) Check(ctx context.Context) bool {
	_, err := g.Authenticate(ctx)
	return err == nil
}

// Login binds user to the session. The session id is regenerated first so
// an id captured before authentication cannot be replayed afterwards.
func (g *SessionGuard) Login(ctx context.Context, user *entity.User, remember bool) error {
	if err := g.store.Regenerate(ctx, g.sess); err != nil {
		return err
	}

	g.sess.Put(userIDKey, strconv.FormatUint(uint64(user.ID), 10))
	if remember {
		g.sess.Put(session.RememberKey, "1")
	} else {
		g.sess.Forget(session.RememberKey)
	}

	g.user = user
	return nil
}

// Logout clears the session and deletes its server-side record.
func (g *SessionGuard) Logout(ctx context.Context) error {
	g.sess.Clear()
	g.user = nil
	return g.store.Delete(ctx, g.sess.ID)
}

// UserOrFail returns the principal established by Authenticate or Login.
func (g *SessionGuard) UserOrFail() (*entity.User, error) {
	if g.user == nil {
		return nil, ErrUnauthenticated
	}
	return g.user, nil
}
