package usecase

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAuthUsecase_ForgotPassword(t *testing.T) {
	t.Run("known email receives a working token", func(t *testing.T) {
		env := newTestEnv(t)
		env.addUser("taro@example.com", "OldPassword1")

		if err := env.uc.ForgotPassword(context.Background(), "taro@example.com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(env.mail.resetTokens) != 1 {
			t.Fatalf("expected 1 reset email, got %d", len(env.mail.resetTokens))
		}
		if err := env.uc.ValidateResetToken(context.Background(), env.mail.resetTokens[0]); err != nil {
			t.Errorf("mailed token should validate: %v", err)
		}
	})

	t.Run("unknown email is indistinguishable from success", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.uc.ForgotPassword(context.Background(), "ghost@example.com")
		if err != nil {
			t.Fatalf("must not disclose that the address is unknown: %v", err)
		}
		if len(env.mail.resetTokens) != 0 {
			t.Error("no email should be sent for an unknown address")
		}
	})
}

func TestAuthUsecase_ResetPassword(t *testing.T) {
	t.Run("updates the password and consumes the token", func(t *testing.T) {
		env := newTestEnv(t)
		env.addUser("taro@example.com", "OldPassword1")

		if err := env.uc.ForgotPassword(context.Background(), "taro@example.com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		token := env.mail.resetTokens[0]

		if err := env.uc.ResetPassword(context.Background(), token, "NewPassword1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// 新しいパスワードでログインできる
		if _, err := env.uc.Login(context.Background(), "taro@example.com", "NewPassword1"); err != nil {
			t.Errorf("new password should work: %v", err)
		}
		// 古いパスワードは使えない
		if _, err := env.uc.Login(context.Background(), "taro@example.com", "OldPassword1"); err == nil {
			t.Error("old password should be rejected")
		}
		// トークンは一度きり
		if err := env.uc.ResetPassword(context.Background(), token, "AnotherPass1"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("token reuse should fail, got: %v", err)
		}
	})

	t.Run("reset unlocks a locked account", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.addUser("taro@example.com", "OldPassword1")
		now := time.Now()
		user.IsLocked = true
		user.LockedAt = &now
		user.FailedLoginAttempts = 5

		if err := env.uc.ForgotPassword(context.Background(), "taro@example.com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := env.uc.ResetPassword(context.Background(), env.mail.resetTokens[0], "NewPassword1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if user.IsLocked || user.LockedAt != nil || user.FailedLoginAttempts != 0 {
			t.Errorf("reset should lift the lock: %+v", user)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.uc.ResetPassword(context.Background(), "bogus", "NewPassword1")
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got: %v", err)
		}
	})
}
