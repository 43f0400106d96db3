package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/guard"
	"auth_backend/internal/feature/auth/transport/http/dto"
	"auth_backend/internal/feature/auth/transport/middleware"
	"auth_backend/internal/feature/auth/usecase"
	"auth_backend/internal/platform/session"
)

// EmailVerificationUsecase はメール確認フローのユースケースを定義します。
type EmailVerificationUsecase interface {
	VerifyEmail(ctx context.Context, plainToken string) (*entity.User, error)
	ResendVerification(ctx context.Context, user *entity.User) error
}

// EmailVerificationHandler はメール確認のHTTPリクエストを処理します。
type EmailVerificationHandler struct {
	verify EmailVerificationUsecase
	guards guard.Factory
	log    zerolog.Logger
}

// NewEmailVerificationHandler はEmailVerificationHandlerの新しいインスタンスを生成します。
func NewEmailVerificationHandler(verify EmailVerificationUsecase, guards guard.Factory, log zerolog.Logger) *EmailVerificationHandler {
	return &EmailVerificationHandler{verify: verify, guards: guards, log: log}
}

// Verify はメール内リンクからのトークンを消費します。
// メールは別デバイスで開かれることがあるため認証を要求しません。
// 未ログインの場合は確認成功時にそのユーザーでセッションを確立します。
func (h *EmailVerificationHandler) Verify(c *gin.Context) {
	token := c.Param("token")

	user, err := h.verify.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAlreadyVerified):
			c.JSON(http.StatusOK, dto.MessageResponse{Message: "Email already verified."})
		case errors.Is(err, usecase.ErrInvalidToken):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "invalid or expired token"})
		default:
			h.log.Error().Err(err).Msg("email verification failed")
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "verification failed"})
		}
		return
	}

	g := h.guards(session.FromContext(c))
	if !g.Check(c.Request.Context()) {
		if err := g.Login(c.Request.Context(), user, false); err != nil {
			h.log.Error().Err(err).Uint("user_id", user.ID).Msg("post-verification login failed")
		}
	}

	h.log.Info().Uint("user_id", user.ID).Msg("email verified")
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Email verified."})
}

// Resend は確認メールを再送します。認証必須です。
func (h *EmailVerificationHandler) Resend(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := h.verify.ResendVerification(c.Request.Context(), user); err != nil {
		if errors.Is(err, usecase.ErrAlreadyVerified) {
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "email already verified"})
			return
		}
		h.log.Error().Err(err).Uint("user_id", user.ID).Msg("resend verification failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "request failed"})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Verification email sent."})
}
