package usecase

import (
	"context"

	"auth_backend/internal/feature/auth/domain/entity"
)

// VerifyEmail はメール確認トークンを消費し、メールアドレスを確認済みに
// します。既に確認済みの場合はErrAlreadyVerifiedを返します（トークンは
// 消費しません）。成功時はウェルカムメールを送信します。
func (a *AuthUsecase) VerifyEmail(ctx context.Context, plainToken string) (*entity.User, error) {
	rec, err := a.verifyTokens.Verify(ctx, plainToken)
	if err != nil {
		return nil, err
	}

	user, err := a.users.FindByID(ctx, rec.UserID)
	if err != nil {
		return nil, err
	}

	if user.IsEmailVerified() {
		return user, ErrAlreadyVerified
	}

	now := a.now()
	user.EmailVerifiedAt = &now
	if err := a.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := a.verifyTokens.RevokeFor(ctx, user.ID); err != nil {
		return nil, err
	}

	if err := a.mail.SendWelcome(user); err != nil {
		a.log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to send welcome email")
	}

	return user, nil
}

// ResendVerification は確認メールを再送します。
// 新しいトークンの発行により既存トークンは失効します。
func (a *AuthUsecase) ResendVerification(ctx context.Context, user *entity.User) error {
	if user.IsEmailVerified() {
		return ErrAlreadyVerified
	}

	token, err := a.verifyTokens.GenerateFor(ctx, user.ID)
	if err != nil {
		return err
	}

	return a.mail.SendVerificationEmail(user, token)
}
