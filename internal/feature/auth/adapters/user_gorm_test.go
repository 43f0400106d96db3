package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(
		&entity.User{},
		&entity.PasswordResetToken{},
		&entity.EmailVerificationToken{},
	)
	require.NoError(t, err, "failed to migrate tables")

	return db
}

func TestUserGorm_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		user := &entity.User{
			Email:        "test@example.com",
			PasswordHash: "hashed_password",
		}

		err := repo.Create(context.Background(), user)

		assert.NoError(t, err, "failed to create user")
		assert.NotZero(t, user.ID, "ID is not set")
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt is not set")
	})

	t.Run("duplicate email returns ErrEmailAlreadyExists", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		first := &entity.User{Email: "duplicate@example.com", PasswordHash: "p1"}
		require.NoError(t, repo.Create(context.Background(), first))

		second := &entity.User{Email: "duplicate@example.com", PasswordHash: "p2"}
		err := repo.Create(context.Background(), second)

		assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
	})

	t.Run("nil user error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		err := repo.Create(context.Background(), nil)

		assert.Error(t, err, "should return error for nil user")
	})
}

func TestUserGorm_FindByEmail(t *testing.T) {
	t.Run("lookup is case-insensitive", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		user := &entity.User{Email: "Mixed.Case@Example.com", PasswordHash: "p"}
		require.NoError(t, repo.Create(context.Background(), user))

		found, err := repo.FindByEmail(context.Background(), "mixed.case@example.com")

		require.NoError(t, err, "failed to find user")
		assert.Equal(t, user.ID, found.ID, "ID does not match")
	})

	t.Run("email not found error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		found, err := repo.FindByEmail(context.Background(), "notfound@example.com")

		assert.Nil(t, found, "user should be nil")
		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	})
}

func TestUserGorm_Update(t *testing.T) {
	t.Run("writes NULL back on unlock", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		lockedAt := time.Now()
		user := &entity.User{
			Email:               "locked@example.com",
			PasswordHash:        "p",
			IsLocked:            true,
			FailedLoginAttempts: 5,
			LockedAt:            &lockedAt,
		}
		require.NoError(t, repo.Create(context.Background(), user))

		user.IsLocked = false
		user.FailedLoginAttempts = 0
		user.LockedAt = nil
		require.NoError(t, repo.Update(context.Background(), user))

		found, err := repo.FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.False(t, found.IsLocked, "lock flag should be cleared")
		assert.Zero(t, found.FailedLoginAttempts, "counter should be cleared")
		assert.Nil(t, found.LockedAt, "LockedAt should be NULL again")
	})
}

func TestUserGorm_IncrementFailedAttempts(t *testing.T) {
	t.Run("increments and returns the new value", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		user := &entity.User{Email: "count@example.com", PasswordHash: "p"}
		require.NoError(t, repo.Create(context.Background(), user))

		for want := 1; want <= 3; want++ {
			got, err := repo.IncrementFailedAttempts(context.Background(), user.ID)
			require.NoError(t, err, "failed to increment")
			assert.Equal(t, want, got, "counter value mismatch")
		}
	})

	t.Run("unknown user returns ErrUserNotFound", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		_, err := repo.IncrementFailedAttempts(context.Background(), 999)

		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	})
}

func TestUserGorm_List(t *testing.T) {
	seed := func(t *testing.T, repo *userGorm) {
		t.Helper()
		name := "Alice Adams"
		users := []*entity.User{
			{Email: "alice@example.com", PasswordHash: "p", FullName: &name},
			{Email: "bob@example.com", PasswordHash: "p"},
			{Email: "carol@example.com", PasswordHash: "p"},
		}
		for _, u := range users {
			require.NoError(t, repo.Create(context.Background(), u))
		}
	}

	t.Run("returns every user with total", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)
		seed(t, repo)

		users, total, err := repo.List(context.Background(), "", 1, 25)

		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, users, 3)
	})

	t.Run("search matches email and name case-insensitively", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)
		seed(t, repo)

		byEmail, total, err := repo.List(context.Background(), "BOB", 1, 25)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, byEmail, 1)
		assert.Equal(t, "bob@example.com", byEmail[0].Email)

		byName, total, err := repo.List(context.Background(), "adams", 1, 25)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, byName, 1)
		assert.Equal(t, "alice@example.com", byName[0].Email)
	})

	t.Run("pagination caps the page size", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)
		seed(t, repo)

		page1, total, err := repo.List(context.Background(), "", 1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total, "total should ignore paging")
		assert.Len(t, page1, 2)

		page2, _, err := repo.List(context.Background(), "", 2, 2)
		require.NoError(t, err)
		assert.Len(t, page2, 1)
	})
}
