// Package oidc implements the OAuth / OpenID Connect client used by the
// federated authentication guard. The provider session (sign-in state,
// PKCE verifier, issued tokens) is kept in the server-side session, so the
// browser never sees provider tokens.
package oidc

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"auth_backend/internal/feature/auth/domain"
	"auth_backend/internal/platform/securetoken"
	"auth_backend/internal/platform/session"
)

// Session keys owned by this package.
const (
	stateKey        = "oidc.state"
	verifierKey     = "oidc.verifier"
	idTokenKey      = "oidc.id_token"
	accessTokenKey  = "oidc.access_token"
	refreshTokenKey = "oidc.refresh_token"
)

var (
	// ErrStateMismatch means the callback's state parameter does not match
	// the one stored at sign-in. Indicates a forged or replayed callback.
	ErrStateMismatch = errors.New("oidc: state mismatch")

	// ErrNoIDToken means the session holds no ID token.
	ErrNoIDToken = errors.New("oidc: no id token in session")

	// ErrTokenExchange means the provider rejected the code exchange.
	ErrTokenExchange = errors.New("oidc: token exchange failed")
)

// Config holds the provider registration.
type Config struct {
	// Endpoint is the provider's base URL, e.g. https://auth.example.com.
	Endpoint  string
	AppID     string
	AppSecret string

	Scopes                []string
	RedirectURI           string
	PostLogoutRedirectURI string
}

// Client drives the authorization-code flow with PKCE against one provider.
type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time
}

// NewClient creates a Client. Scopes default to openid/profile/email when
// empty.
func NewClient(cfg Config) *Client {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"openid", "profile", "email"}
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
		now:  time.Now,
	}
}

func (c *Client) issuer() string {
	return strings.TrimSuffix(c.cfg.Endpoint, "/") + "/oidc"
}

func (c *Client) authorizeURL() string { return c.issuer() + "/auth" }
func (c *Client) tokenURL() string     { return c.issuer() + "/token" }
func (c *Client) endSessionURL() string {
	return c.issuer() + "/session/end"
}

// SignInURL starts a sign-in: it generates fresh state and PKCE verifier,
// stores both in the session, and returns the provider authorization URL
// to redirect the browser to.
func (c *Client) SignInURL(sess *session.Session) (string, error) {
	state, err := securetoken.Generate(16)
	if err != nil {
		return "", err
	}
	verifier, err := securetoken.Generate(32)
	if err != nil {
		return "", err
	}

	sess.Put(stateKey, state)
	sess.Put(verifierKey, verifier)

	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])

	q := url.Values{}
	q.Set("client_id", c.cfg.AppID)
	q.Set("redirect_uri", c.cfg.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(c.cfg.Scopes, " "))
	q.Set("state", state)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "S256")
	q.Set("prompt", "consent")

	return c.authorizeURL() + "?" + q.Encode(), nil
}

// tokenResponse is the provider's token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// HandleSignInCallback finishes a sign-in: it checks the state parameter
// against the session, exchanges the code for tokens, and stores the
// tokens in the session. The sign-in state is consumed either way.
func (c *Client) HandleSignInCallback(ctx context.Context, sess *session.Session, code, state string) error {
	wantState, ok := sess.Get(stateKey)
	verifier, _ := sess.Get(verifierKey)
	sess.Forget(stateKey)
	sess.Forget(verifierKey)

	if !ok || state == "" || state != wantState {
		return ErrStateMismatch
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.cfg.RedirectURI)
	form.Set("client_id", c.cfg.AppID)
	form.Set("client_secret", c.cfg.AppSecret)
	form.Set("code_verifier", verifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrTokenExchange, resp.StatusCode)
	}

	var tokens tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	if tokens.IDToken == "" {
		return fmt.Errorf("%w: no id_token in response", ErrTokenExchange)
	}

	sess.Put(idTokenKey, tokens.IDToken)
	sess.Put(accessTokenKey, tokens.AccessToken)
	if tokens.RefreshToken != "" {
		sess.Put(refreshTokenKey, tokens.RefreshToken)
	}
	return nil
}

// IsAuthenticated reports whether the session holds an ID token.
func (c *Client) IsAuthenticated(sess *session.Session) bool {
	v, ok := sess.Get(idTokenKey)
	return ok && v != ""
}

// IDTokenClaims returns the claims of the session's ID token after checking
// issuer, audience and expiry. The token itself arrived over the TLS
// channel of the code exchange, so possession in the session is the trust
// anchor; issuer and audience checks guard against tokens minted for a
// different application.
func (c *Client) IDTokenClaims(_ context.Context, sess *session.Session) (*domain.Claims, error) {
	raw, ok := sess.Get(idTokenKey)
	if !ok || raw == "" {
		return nil, ErrNoIDToken
	}

	var mc jwt.MapClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &mc); err != nil {
		return nil, fmt.Errorf("oidc: malformed id token: %w", err)
	}

	if iss, _ := mc.GetIssuer(); iss != c.issuer() {
		return nil, fmt.Errorf("oidc: unexpected issuer %q", iss)
	}
	aud, err := mc.GetAudience()
	if err != nil || !containsAudience(aud, c.cfg.AppID) {
		return nil, errors.New("oidc: token not issued for this application")
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil || exp.Before(c.now()) {
		return nil, errors.New("oidc: id token expired")
	}

	claims := &domain.Claims{ExpiresAt: exp.Time}
	if sub, _ := mc.GetSubject(); sub != "" {
		claims.Subject = sub
	}
	claims.Email = stringClaim(mc, "email")
	claims.Username = stringClaim(mc, "username")
	claims.Name = stringClaim(mc, "name")

	return claims, nil
}

// SignOutURL returns the provider's end-session URL. The ID token is passed
// as a hint so the provider can end the right session without prompting.
func (c *Client) SignOutURL(sess *session.Session) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.AppID)
	if c.cfg.PostLogoutRedirectURI != "" {
		q.Set("post_logout_redirect_uri", c.cfg.PostLogoutRedirectURI)
	}
	if idToken, ok := sess.Get(idTokenKey); ok && idToken != "" {
		q.Set("id_token_hint", idToken)
	}
	return c.endSessionURL() + "?" + q.Encode()
}

// ClearSession drops every provider value from the session.
func (c *Client) ClearSession(sess *session.Session) {
	sess.Forget(stateKey)
	sess.Forget(verifierKey)
	sess.Forget(idTokenKey)
	sess.Forget(accessTokenKey)
	sess.Forget(refreshTokenKey)
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

func stringClaim(mc jwt.MapClaims, key string) string {
	if v, ok := mc[key].(string); ok {
		return v
	}
	return ""
}
