package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/alphalabs/mobile-api/internal/crypto"
	"github.com/alphalabs/mobile-api/internal/repository"
	"github.com/alphalabs/mobile-api/internal/repository/repotest"
)

type testEnv struct {
	db     *repository.DB
	users  *repository.UserRepository
	hasher *crypto.PasswordHasher
	tokens *crypto.TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := repotest.Open(t)
	repotest.SeedClient(t, db)

	tokens, err := crypto.NewTokenIssuer(crypto.TokenConfig{
		Secret:    "test-secret",
		Algorithm: "HS256",
		Expiry:    time.Hour,
		Issuer: crypto.IssuerInfo{
			Name:        "alpha-labs-mobile-api",
			Version:     "1.0.0",
			Environment: "test",
			URL:         "http://localhost:8000",
		},
	})
	require.NoError(t, err)

	return &testEnv{
		db:     db,
		users:  repository.NewUserRepository(db),
		hasher: crypto.NewPasswordHasher(bcrypt.MinCost),
		tokens: tokens,
	}
}

func (e *testEnv) authService() *AuthService {
	return NewAuthService(e.users, e.hasher, e.tokens)
}
