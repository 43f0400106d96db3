package usecase

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAuthUsecase_VerifyEmail(t *testing.T) {
	t.Run("marks the address verified and sends the welcome mail", func(t *testing.T) {
		env := newTestEnv(t)
		user, err := env.uc.Register(context.Background(), RegisterParams{
			Email:    "taro@example.com",
			Password: "Password123",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		token := env.mail.verificationTokens[0]

		verified, err := env.uc.VerifyEmail(context.Background(), token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if verified.ID != user.ID {
			t.Error("wrong user verified")
		}
		if !verified.IsEmailVerified() {
			t.Error("EmailVerifiedAt should be set")
		}
		if env.mail.welcomes != 1 {
			t.Errorf("expected 1 welcome mail, got %d", env.mail.welcomes)
		}

		// トークンは消費済み
		if _, err := env.uc.VerifyEmail(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("consumed token should be invalid, got: %v", err)
		}
	})

	t.Run("already verified address keeps its original timestamp", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.addUser("taro@example.com", "Password123")
		verifiedAt := time.Now().Add(-24 * time.Hour)
		user.EmailVerifiedAt = &verifiedAt

		token, err := env.uc.verifyTokens.GenerateFor(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = env.uc.VerifyEmail(context.Background(), token)
		if !errors.Is(err, ErrAlreadyVerified) {
			t.Fatalf("expected ErrAlreadyVerified, got: %v", err)
		}
		if !user.EmailVerifiedAt.Equal(verifiedAt) {
			t.Error("original verification timestamp must not change")
		}
	})
}

func TestAuthUsecase_ResendVerification(t *testing.T) {
	t.Run("resending invalidates the previous token", func(t *testing.T) {
		env := newTestEnv(t)
		user, err := env.uc.Register(context.Background(), RegisterParams{
			Email:    "taro@example.com",
			Password: "Password123",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		first := env.mail.verificationTokens[0]

		if err := env.uc.ResendVerification(context.Background(), user); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second := env.mail.verificationTokens[1]

		if _, err := env.uc.VerifyEmail(context.Background(), first); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("old token should be dead, got: %v", err)
		}
		if _, err := env.uc.VerifyEmail(context.Background(), second); err != nil {
			t.Errorf("new token should verify: %v", err)
		}
	})

	t.Run("verified user cannot request a resend", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.addUser("taro@example.com", "Password123")
		now := time.Now()
		user.EmailVerifiedAt = &now

		err := env.uc.ResendVerification(context.Background(), user)
		if !errors.Is(err, ErrAlreadyVerified) {
			t.Errorf("expected ErrAlreadyVerified, got: %v", err)
		}
	})
}
