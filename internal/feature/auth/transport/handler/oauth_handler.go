package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"auth_backend/internal/feature/auth/domain"
	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/guard"
	"auth_backend/internal/platform/session"
)

// ProviderFlow は外部IDプロバイダーとのサインイン・サインアウトフローを
// 定義します。実装はplatform/oidcにあります。
type ProviderFlow interface {
	SignInURL(sess *session.Session) (string, error)
	HandleSignInCallback(ctx context.Context, sess *session.Session, code, state string) error
	IDTokenClaims(ctx context.Context, sess *session.Session) (*domain.Claims, error)
	SignOutURL(sess *session.Session) string
	ClearSession(sess *session.Session)
}

// FederatedUsecase はプロバイダークレームからのローカルユーザー解決を
// 定義します。
type FederatedUsecase interface {
	ProvisionFromClaims(ctx context.Context, claims *domain.Claims) (*entity.User, error)
}

// OAuthHandler は外部IDプロバイダー経由の認証フローを処理します。
type OAuthHandler struct {
	provider ProviderFlow
	auth     FederatedUsecase
	guards   guard.Factory
	log      zerolog.Logger
}

// NewOAuthHandler はOAuthHandlerの新しいインスタンスを生成します。
func NewOAuthHandler(provider ProviderFlow, auth FederatedUsecase, guards guard.Factory, log zerolog.Logger) *OAuthHandler {
	return &OAuthHandler{provider: provider, auth: auth, guards: guards, log: log}
}

// SignIn はプロバイダーの認可エンドポイントへリダイレクトします。
// サインイン状態（state、PKCE検証値）はセッションに保存されます。
func (h *OAuthHandler) SignIn(c *gin.Context) {
	sess := session.FromContext(c)

	url, err := h.provider.SignInURL(sess)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to build sign-in url")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	c.Redirect(http.StatusFound, url)
}

// Callback はプロバイダーからのリダイレクトを処理します。
// コード交換・クレーム検証・ローカルユーザー解決のいずれが失敗しても、
// 攻撃者に手がかりを与えないよう同じ汎用失敗として扱います。
func (h *OAuthHandler) Callback(c *gin.Context) {
	sess := session.FromContext(c)
	ctx := c.Request.Context()

	code := c.Query("code")
	state := c.Query("state")

	if err := h.provider.HandleSignInCallback(ctx, sess, code, state); err != nil {
		h.failSignIn(c, sess, err, "sign-in callback failed")
		return
	}

	claims, err := h.provider.IDTokenClaims(ctx, sess)
	if err != nil {
		h.failSignIn(c, sess, err, "id token validation failed")
		return
	}

	user, err := h.auth.ProvisionFromClaims(ctx, claims)
	if err != nil {
		h.failSignIn(c, sess, err, "failed to resolve federated user")
		return
	}

	g := h.guards(sess)
	if err := g.Login(ctx, user, false); err != nil {
		h.failSignIn(c, sess, err, "failed to establish session")
		return
	}

	h.log.Info().Uint("user_id", user.ID).Msg("federated login successful")
	c.Redirect(http.StatusFound, "/")
}

// SignOut はローカルセッションを破棄し、プロバイダーのセッション終了
// エンドポイントへリダイレクトします。
func (h *OAuthHandler) SignOut(c *gin.Context) {
	sess := session.FromContext(c)
	ctx := c.Request.Context()

	// ClearSessionの前にid_token_hint付きURLを組み立てておく
	signOutURL := h.provider.SignOutURL(sess)

	g := h.guards(sess)
	if err := g.Logout(ctx); err != nil {
		h.log.Error().Err(err).Msg("sign-out failed")
	}

	c.Redirect(http.StatusFound, signOutURL)
}

// failSignIn はサインイン状態を破棄して汎用の失敗リダイレクトを返します。
func (h *OAuthHandler) failSignIn(c *gin.Context, sess *session.Session, err error, msg string) {
	h.log.Warn().Err(err).Str("remote_addr", c.ClientIP()).Msg(msg)
	h.provider.ClearSession(sess)
	c.Redirect(http.StatusFound, "/login?error=oauth")
}
