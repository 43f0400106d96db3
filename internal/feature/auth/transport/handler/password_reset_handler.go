package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"auth_backend/internal/feature/auth/transport/http/dto"
	"auth_backend/internal/feature/auth/usecase"
)

// PasswordResetUsecase はパスワードリセットフローのユースケースを定義します。
type PasswordResetUsecase interface {
	ForgotPassword(ctx context.Context, email string) error
	ValidateResetToken(ctx context.Context, plainToken string) error
	ResetPassword(ctx context.Context, plainToken, newPassword string) error
}

// PasswordResetHandler はパスワードリセットのHTTPリクエストを処理します。
type PasswordResetHandler struct {
	reset PasswordResetUsecase
	log   zerolog.Logger
}

// NewPasswordResetHandler はPasswordResetHandlerの新しいインスタンスを生成します。
func NewPasswordResetHandler(reset PasswordResetUsecase, log zerolog.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{reset: reset, log: log}
}

// Forgot はリセットメールの送信を受け付けます。
// ユーザー列挙攻撃を防止するため、メールアドレスの存在有無に関わらず
// 常に同じ応答を返します。
func (h *PasswordResetHandler) Forgot(c *gin.Context) {
	var req dto.ForgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(err))
		return
	}

	if err := h.reset.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.log.Error().Err(err).Str("remote_addr", c.ClientIP()).Msg("forgot password failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "request failed"})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Message: "If the address exists, a reset link has been sent.",
	})
}

// Validate はリセット画面の表示前にトークンの有効性を検査します。
func (h *PasswordResetHandler) Validate(c *gin.Context) {
	token := c.Param("token")
	if err := h.reset.ValidateResetToken(c.Request.Context(), token); err != nil {
		if errors.Is(err, usecase.ErrInvalidToken) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "invalid or expired token"})
			return
		}
		h.log.Error().Err(err).Msg("reset token validation failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "request failed"})
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}

// Reset はトークンを消費してパスワードを更新します。
func (h *PasswordResetHandler) Reset(c *gin.Context) {
	var req dto.ResetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(err))
		return
	}

	if err := h.reset.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, usecase.ErrInvalidToken) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "invalid or expired token"})
			return
		}
		h.log.Error().Err(err).Msg("password reset failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "request failed"})
		return
	}

	h.log.Info().Str("remote_addr", c.ClientIP()).Msg("password reset completed")
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password has been reset."})
}
