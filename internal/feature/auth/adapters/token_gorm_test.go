package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/usecase"
)

func createTestUser(t *testing.T, repo *userGorm, email string) *entity.User {
	t.Helper()
	user := &entity.User{Email: email, PasswordHash: "p"}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestPasswordResetTokenGorm_CreateInvalidating(t *testing.T) {
	t.Run("new token replaces the previous one", func(t *testing.T) {
		db := setupTestDB(t)
		users := NewUserGorm(db)
		repo := NewPasswordResetTokenGorm(db)
		user := createTestUser(t, users, "reset@example.com")

		ctx := context.Background()
		expires := time.Now().Add(time.Hour)

		first := &usecase.TokenRecord{UserID: user.ID, TokenHash: "hash-1", ExpiresAt: expires}
		require.NoError(t, repo.CreateInvalidating(ctx, first))
		assert.NotZero(t, first.ID, "ID should be set on insert")

		second := &usecase.TokenRecord{UserID: user.ID, TokenHash: "hash-2", ExpiresAt: expires}
		require.NoError(t, repo.CreateInvalidating(ctx, second))

		live, err := repo.FindLive(ctx, time.Now())
		require.NoError(t, err)
		require.Len(t, live, 1, "only the newest token should be live")
		assert.Equal(t, "hash-2", live[0].TokenHash)
	})

	t.Run("tokens of other users are untouched", func(t *testing.T) {
		db := setupTestDB(t)
		users := NewUserGorm(db)
		repo := NewPasswordResetTokenGorm(db)
		alice := createTestUser(t, users, "alice@example.com")
		bob := createTestUser(t, users, "bob@example.com")

		ctx := context.Background()
		expires := time.Now().Add(time.Hour)

		require.NoError(t, repo.CreateInvalidating(ctx,
			&usecase.TokenRecord{UserID: alice.ID, TokenHash: "alice-hash", ExpiresAt: expires}))
		require.NoError(t, repo.CreateInvalidating(ctx,
			&usecase.TokenRecord{UserID: bob.ID, TokenHash: "bob-hash", ExpiresAt: expires}))

		live, err := repo.FindLive(ctx, time.Now())
		require.NoError(t, err)
		assert.Len(t, live, 2, "each user keeps one live token")
	})
}

func TestPasswordResetTokenGorm_FindLive(t *testing.T) {
	t.Run("expired tokens are excluded", func(t *testing.T) {
		db := setupTestDB(t)
		users := NewUserGorm(db)
		repo := NewPasswordResetTokenGorm(db)
		alice := createTestUser(t, users, "alice@example.com")
		bob := createTestUser(t, users, "bob@example.com")

		ctx := context.Background()
		now := time.Now()

		require.NoError(t, repo.CreateInvalidating(ctx,
			&usecase.TokenRecord{UserID: alice.ID, TokenHash: "live", ExpiresAt: now.Add(time.Hour)}))
		require.NoError(t, repo.CreateInvalidating(ctx,
			&usecase.TokenRecord{UserID: bob.ID, TokenHash: "dead", ExpiresAt: now.Add(-time.Minute)}))

		live, err := repo.FindLive(ctx, now)
		require.NoError(t, err)
		require.Len(t, live, 1)
		assert.Equal(t, "live", live[0].TokenHash)
	})
}

func TestPasswordResetTokenGorm_DeleteForUser(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserGorm(db)
	repo := NewPasswordResetTokenGorm(db)
	user := createTestUser(t, users, "revoke@example.com")

	ctx := context.Background()
	require.NoError(t, repo.CreateInvalidating(ctx,
		&usecase.TokenRecord{UserID: user.ID, TokenHash: "h", ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, repo.DeleteForUser(ctx, user.ID))

	live, err := repo.FindLive(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, live, "revoked tokens should be gone")
}

func TestEmailVerificationTokenGorm_DeleteExpired(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserGorm(db)
	repo := NewEmailVerificationTokenGorm(db)
	alice := createTestUser(t, users, "alice@example.com")
	bob := createTestUser(t, users, "bob@example.com")

	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.CreateInvalidating(ctx,
		&usecase.TokenRecord{UserID: alice.ID, TokenHash: "expired", ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.CreateInvalidating(ctx,
		&usecase.TokenRecord{UserID: bob.ID, TokenHash: "live", ExpiresAt: now.Add(time.Hour)}))

	deleted, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted, "only the expired row should be deleted")

	live, err := repo.FindLive(ctx, now)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "live", live[0].TokenHash)
}
