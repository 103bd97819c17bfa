package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu_backend/internal/feature/auth/domain/entity"
	"menu_backend/internal/feature/auth/usecase"
)

func TestUserGorm_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		user := &entity.User{Email: "test@example.com", PasswordHash: "hashed_password"}
		err := repo.Create(context.Background(), user)

		require.NoError(t, err, "failed to create user")
		assert.NotZero(t, user.ID, "ID is not set")
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt is not set")
		assert.Equal(t, 0, user.LoginAttempts)
		assert.Nil(t, user.LockUntil)
	})

	t.Run("duplicate email error", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		require.NoError(t, repo.Create(context.Background(), &entity.User{Email: "dup@example.com", PasswordHash: "p1"}))
		err := repo.Create(context.Background(), &entity.User{Email: "dup@example.com", PasswordHash: "p2"})

		assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
	})

	t.Run("email is case sensitive", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		require.NoError(t, repo.Create(context.Background(), &entity.User{Email: "chef@example.com", PasswordHash: "p1"}))
		assert.NoError(t, repo.Create(context.Background(), &entity.User{Email: "Chef@example.com", PasswordHash: "p2"}))

		_, err := repo.FindByEmail(context.Background(), "CHEF@example.com")
		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	})

	t.Run("nil user error", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))
		assert.Error(t, repo.Create(context.Background(), nil))
	})
}

func TestUserGorm_Find(t *testing.T) {
	repo := NewUserGorm(setupTestDB(t))
	users := []*entity.User{
		{Email: "user1@example.com", Name: "One", PasswordHash: "pass1"},
		{Email: "user2@example.com", Name: "Two", PasswordHash: "pass2"},
	}
	for _, u := range users {
		require.NoError(t, repo.Create(context.Background(), u), "failed to create test data")
	}

	found, err := repo.FindByEmail(context.Background(), "user2@example.com")
	require.NoError(t, err)
	assert.Equal(t, users[1].ID, found.ID)
	assert.Equal(t, "Two", found.Name)
	assert.Equal(t, "pass2", found.PasswordHash)

	found, err = repo.FindByID(context.Background(), users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "user1@example.com", found.Email)

	_, err = repo.FindByEmail(context.Background(), "notfound@example.com")
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	_, err = repo.FindByEmail(context.Background(), "")
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	_, err = repo.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	_, err = repo.FindByID(context.Background(), 0)
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}

// TestUserGorm_UpdateLoginState は失敗回数とロック期限の書き込みと解除を検証します。
func TestUserGorm_UpdateLoginState(t *testing.T) {
	repo := NewUserGorm(setupTestDB(t))
	user := &entity.User{Email: "lock@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))

	lockUntil := time.Now().Add(5 * time.Minute).UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLoginState(context.Background(), user.ID, 5, &lockUntil))

	found, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.LoginAttempts)
	require.NotNil(t, found.LockUntil)
	assert.True(t, lockUntil.Equal(*found.LockUntil))

	require.NoError(t, repo.UpdateLoginState(context.Background(), user.ID, 0, nil))
	found, err = repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.LoginAttempts)
	assert.Nil(t, found.LockUntil)

	err = repo.UpdateLoginState(context.Background(), 999, 1, nil)
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}
