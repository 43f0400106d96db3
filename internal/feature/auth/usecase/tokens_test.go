package usecase

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTokenIssuer_GenerateAndVerify(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		issuer := NewTokenIssuer(&memoryTokenRepository{}, fakeHasher{}, time.Hour)

		plain, err := issuer.GenerateFor(context.Background(), 42)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(plain) != 64 {
			t.Errorf("expected 64 hex chars, got %d", len(plain))
		}

		rec, err := issuer.Verify(context.Background(), plain)
		if err != nil {
			t.Fatalf("token should verify: %v", err)
		}
		if rec.UserID != 42 {
			t.Errorf("wrong owner: %d", rec.UserID)
		}
		if rec.TokenHash == plain {
			t.Error("plaintext must not be stored")
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		issuer := NewTokenIssuer(&memoryTokenRepository{}, fakeHasher{}, time.Hour)

		_, err := issuer.Verify(context.Background(), "deadbeef")
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got: %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		issuer := NewTokenIssuer(&memoryTokenRepository{}, fakeHasher{}, time.Hour)

		plain, err := issuer.GenerateFor(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// 有効期限を過ぎた時点に時計を進める
		issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

		_, err = issuer.Verify(context.Background(), plain)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expired token should be invalid, got: %v", err)
		}
	})

	t.Run("new token invalidates the previous one", func(t *testing.T) {
		issuer := NewTokenIssuer(&memoryTokenRepository{}, fakeHasher{}, time.Hour)

		first, err := issuer.GenerateFor(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := issuer.GenerateFor(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := issuer.Verify(context.Background(), first); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("first token should be dead, got: %v", err)
		}
		if _, err := issuer.Verify(context.Background(), second); err != nil {
			t.Errorf("second token should verify: %v", err)
		}
	})

	t.Run("corrupt stored hash is skipped", func(t *testing.T) {
		repo := &memoryTokenRepository{}
		issuer := NewTokenIssuer(repo, fakeHasher{}, time.Hour)

		// fakeHasherは"corrupt"で始まるハッシュの検証でエラーを返す
		repo.recs = append(repo.recs, TokenRecord{
			ID: 99, UserID: 9, TokenHash: "corrupt-row",
			ExpiresAt: time.Now().Add(time.Hour),
		})

		plain, err := issuer.GenerateFor(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		rec, err := issuer.Verify(context.Background(), plain)
		if err != nil {
			t.Fatalf("corrupt row should not break verification: %v", err)
		}
		if rec.UserID != 1 {
			t.Errorf("wrong record matched: %+v", rec)
		}
	})
}

func TestTokenIssuer_RevokeFor(t *testing.T) {
	issuer := NewTokenIssuer(&memoryTokenRepository{}, fakeHasher{}, time.Hour)

	plain, err := issuer.GenerateFor(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := issuer.RevokeFor(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := issuer.Verify(context.Background(), plain); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("revoked token should be invalid, got: %v", err)
	}
}

func TestTokenIssuer_DeleteExpired(t *testing.T) {
	repo := &memoryTokenRepository{}
	issuer := NewTokenIssuer(repo, fakeHasher{}, time.Hour)

	repo.recs = append(repo.recs,
		TokenRecord{ID: 1, UserID: 1, TokenHash: "h1", ExpiresAt: time.Now().Add(-time.Minute)},
		TokenRecord{ID: 2, UserID: 2, TokenHash: "h2", ExpiresAt: time.Now().Add(time.Hour)},
	)

	deleted, err := issuer.DeleteExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}
}
