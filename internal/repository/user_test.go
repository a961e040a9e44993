package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphalabs/mobile-api/internal/model"
	"github.com/alphalabs/mobile-api/internal/repository"
	"github.com/alphalabs/mobile-api/internal/repository/repotest"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := repotest.Open(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	user := &model.User{Email: "alice@example.com", Name: "Alice", PasswordHash: "hash", IsActive: true}
	require.NoError(t, repo.Create(ctx, user))
	assert.Positive(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "Alice", byEmail.Name)
	assert.Equal(t, "hash", byEmail.PasswordHash)
	assert.True(t, byEmail.IsActive)
	assert.False(t, byEmail.IsVerified)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)
	assert.WithinDuration(t, user.CreatedAt, byID.CreatedAt, 0)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := repotest.Open(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{Email: "dup@example.com", Name: "A", PasswordHash: "h", IsActive: true}))

	err := repo.Create(ctx, &model.User{Email: "dup@example.com", Name: "B", PasswordHash: "h", IsActive: true})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestUserRepository_NotFound(t *testing.T) {
	db := repotest.Open(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = repo.First(ctx)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	err = repo.Update(ctx, &model.User{ID: 999, Name: "ghost"})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_EmailIsCaseSensitive(t *testing.T) {
	db := repotest.Open(t)
	repo := repository.NewUserRepository(db)

	repotest.CreateUser(t, db, "Case@example.com")

	_, err := repo.GetByEmail(context.Background(), "case@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_FirstReturnsLowestID(t *testing.T) {
	db := repotest.Open(t)
	repo := repository.NewUserRepository(db)

	first := repotest.CreateUser(t, db, "first@example.com")
	repotest.CreateUser(t, db, "second@example.com")

	got, err := repo.First(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestUserRepository_Update(t *testing.T) {
	db := repotest.Open(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	user := repotest.CreateUser(t, db, "update@example.com")
	user.Name = "Renamed"
	user.PasswordHash = "new-hash"
	user.IsVerified = true
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.True(t, got.IsVerified)
}
