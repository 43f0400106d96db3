// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
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

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規ユーザーを登録し、確認メールを送信します。
	Register(ctx context.Context, params usecase.RegisterParams) (*entity.User, error)
	// Login は認証情報を検証し、成功時にユーザーを返します。
	Login(ctx context.Context, email, password string) (*entity.User, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth   AuthUsecase
	guards guard.Factory
	log    zerolog.Logger
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewAuthHandler(auth AuthUsecase, guards guard.Factory, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, guards: guards, log: log}
}

// Register はユーザー登録エンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メールアドレス重複時は409を返却
// - 成功時はセッションを確立して201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn().Err(err).Str("remote_addr", c.ClientIP()).Msg("register validation failed")
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(err))
		return
	}

	params := usecase.RegisterParams{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	}

	user, err := h.auth.Register(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, usecase.ErrEmailAlreadyExists) {
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "email already in use"})
			return
		}
		h.log.Error().Err(err).Str("remote_addr", c.ClientIP()).Msg("register failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "registration failed"})
		return
	}

	// 登録直後にセッションを確立する
	g := h.guards(session.FromContext(c))
	if err := g.Login(c.Request.Context(), user, false); err != nil {
		h.log.Error().Err(err).Uint("user_id", user.ID).Msg("post-register login failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "registration failed"})
		return
	}

	h.log.Info().Uint("user_id", user.ID).Str("remote_addr", c.ClientIP()).Msg("user registered")
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// Login はログインエンドポイントを処理します。
// - 認証情報が不正な場合は残り試行回数を含むメッセージと共に401を返却
// - アカウントロック時は423を返却
// - 成功時はセッションを確立して200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn().Err(err).Str("remote_addr", c.ClientIP()).Msg("login validation failed")
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(err))
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var locked *usecase.AccountLockedError
		var invalid *usecase.InvalidCredentialsError
		switch {
		case errors.As(err, &locked):
			h.log.Warn().Str("remote_addr", c.ClientIP()).Msg("login rejected: account locked")
			c.JSON(http.StatusLocked, dto.ErrorResponse{Error: locked.Reason})
		case errors.As(err, &invalid):
			h.log.Warn().Str("remote_addr", c.ClientIP()).Msg("login failed: invalid credentials")
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: invalid.Error()})
		default:
			h.log.Error().Err(err).Str("remote_addr", c.ClientIP()).Msg("login failed")
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "login failed"})
		}
		return
	}

	g := h.guards(session.FromContext(c))
	if err := g.Login(c.Request.Context(), user, req.Remember); err != nil {
		h.log.Error().Err(err).Uint("user_id", user.ID).Msg("session login failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "login failed"})
		return
	}

	h.log.Info().Uint("user_id", user.ID).Str("remote_addr", c.ClientIP()).Msg("user login successful")
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// Logout は現在のセッションを破棄します。
func (h *AuthHandler) Logout(c *gin.Context) {
	g := middleware.CurrentGuard(c)
	if err := g.Logout(c.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("logout failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "logout failed"})
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}

// Me は認証済みユーザー自身の情報を返します。
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewUserResponse(middleware.CurrentUser(c)))
}
