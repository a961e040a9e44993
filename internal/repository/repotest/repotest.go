// Package repotest provides throwaway SQLite databases for tests.
package repotest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphalabs/mobile-api/internal/model"
	"github.com/alphalabs/mobile-api/internal/repository"
)

// Open creates a migrated SQLite database in a temporary directory. It is
// closed when the test ends.
func Open(t testing.TB) *repository.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

	db, err := repository.NewDB("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

// SeedClient inserts the default client.
func SeedClient(t testing.TB, db *repository.DB) {
	t.Helper()

	err := repository.NewClientRepository(db).CreateWithID(context.Background(), &model.Client{
		ID:       model.DefaultClientID,
		Name:     model.DefaultClientName,
		IsActive: true,
	})
	require.NoError(t, err)
}

// CreateUser inserts an active user with a placeholder password hash.
func CreateUser(t testing.TB, db *repository.DB, email string) *model.User {
	t.Helper()

	user := &model.User{
		Email:        email,
		Name:         "User " + email,
		PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderplacehold",
		IsActive:     true,
	}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), user))
	return user
}
