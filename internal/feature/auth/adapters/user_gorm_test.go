package adapters

import (
	"context"
	"testing"

	"imagegen_backend/internal/feature/auth/domain/entity"
	"imagegen_backend/internal/feature/auth/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&entity.User{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

func TestNewUserGorm(t *testing.T) {
	db := setupTestDB(t)

	repo := NewUserGorm(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestUserGorm_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		user := &entity.User{Email: "test@example.com", Password: "hashed_password"}

		err := repo.Create(context.Background(), user)

		require.NoError(t, err, "failed to create user")
		assert.NotZero(t, user.ID, "ID is not set")
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt is not set")

		found, err := repo.FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.SubscriptionInactive, found.SubscriptionStatus)
		assert.Nil(t, found.SubscriptionExpiry)
		assert.Zero(t, found.Version)
	})

	t.Run("duplicate email error", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		first := &entity.User{Email: "dup@example.com", Password: "hash1"}
		require.NoError(t, repo.Create(context.Background(), first))

		second := &entity.User{Email: "dup@example.com", Password: "hash2"}
		err := repo.Create(context.Background(), second)

		assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
	})
}

func TestUserGorm_FindByEmail(t *testing.T) {
	repo := NewUserGorm(setupTestDB(t))
	require.NoError(t, repo.Create(context.Background(), &entity.User{Email: "find@example.com", Password: "h"}))

	t.Run("existing user", func(t *testing.T) {
		u, err := repo.FindByEmail(context.Background(), "find@example.com")
		require.NoError(t, err)
		assert.Equal(t, "find@example.com", u.Email)
	})

	t.Run("missing user", func(t *testing.T) {
		u, err := repo.FindByEmail(context.Background(), "nobody@example.com")
		assert.Nil(t, u)
		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	})
}

func TestUserGorm_FindByID_NotFound(t *testing.T) {
	repo := NewUserGorm(setupTestDB(t))

	u, err := repo.FindByID(context.Background(), 999)

	assert.Nil(t, u)
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}
