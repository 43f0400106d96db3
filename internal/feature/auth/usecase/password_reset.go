package usecase

import (
	"context"
	"errors"
)

// ForgotPassword はパスワードリセットの起点です。
// 登録されていないメールアドレスでも成功として扱い、メールアドレスの存在を
// 外部から観測できないようにします（メール送信の有無だけが分岐）。
func (a *AuthUsecase) ForgotPassword(ctx context.Context, email string) error {
	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// 存在しないことを漏らさないため、成功と同じ応答を返す
			return nil
		}
		return err
	}

	token, err := a.resetTokens.GenerateFor(ctx, user.ID)
	if err != nil {
		return err
	}

	if err := a.mail.SendPasswordReset(user, token); err != nil {
		a.log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to send password reset email")
	}

	return nil
}

// ValidateResetToken はリセット画面表示前のトークン検証です。
// 不正・期限切れはどちらもErrInvalidTokenになります。
func (a *AuthUsecase) ValidateResetToken(ctx context.Context, plainToken string) error {
	_, err := a.resetTokens.Verify(ctx, plainToken)
	return err
}

// ResetPassword はトークンを消費してパスワードを更新します。
// リセット成功はアカウントロックの解除も兼ね、同一ユーザーの残りの
// リセットトークンを全て失効させます。
func (a *AuthUsecase) ResetPassword(ctx context.Context, plainToken, newPassword string) error {
	rec, err := a.resetTokens.Verify(ctx, plainToken)
	if err != nil {
		return err
	}

	user, err := a.users.FindByID(ctx, rec.UserID)
	if err != nil {
		return err
	}

	hash, err := a.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	// ロック中のアカウントはパスワードリセットで即時解除する
	if user.IsLocked {
		user.IsLocked = false
		user.LockedAt = nil
		user.FailedLoginAttempts = 0
	}

	if err := a.users.Update(ctx, user); err != nil {
		return err
	}

	return a.resetTokens.RevokeFor(ctx, user.ID)
}
