package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alphalabs/mobile-api/internal/crypto"
	"github.com/alphalabs/mobile-api/internal/model"
	"github.com/alphalabs/mobile-api/internal/repository"
)

// ErrNotAuthenticated is the single outcome of every failed bearer check.
var ErrNotAuthenticated = errors.New("could not validate credentials")

// TestIdentity is the account used when authentication is bypassed.
type TestIdentity struct {
	Email    string
	Name     string
	Password string
}

// GateOptions configures a Gate.
type GateOptions struct {
	// Disabled skips token verification and resolves every request to the
	// first stored user. Never allowed in production.
	Disabled bool
	TestUser TestIdentity
}

// Gate turns a bearer token into the user it was issued to.
type Gate struct {
	users  UserStore
	tokens *crypto.TokenIssuer
	hasher *crypto.PasswordHasher
	opts   GateOptions
}

// NewGate creates a new Gate.
func NewGate(users UserStore, tokens *crypto.TokenIssuer, hasher *crypto.PasswordHasher, opts GateOptions) *Gate {
	return &Gate{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		opts:   opts,
	}
}

// Resolve returns the user a token belongs to. An empty token means no
// credential was presented. All verification failures are reported as
// ErrNotAuthenticated; only storage failures surface as other errors.
func (g *Gate) Resolve(ctx context.Context, token string) (*model.User, error) {
	if g.opts.Disabled {
		return g.bypassUser(ctx)
	}

	if token == "" {
		return nil, ErrNotAuthenticated
	}

	claims, err := g.tokens.Validate(token)
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	user, err := g.users.GetByID(ctx, claims.User.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrNotAuthenticated
	}

	return user, nil
}

func (g *Gate) bypassUser(ctx context.Context) (*model.User, error) {
	user, err := g.users.First(ctx)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := g.hasher.Hash(g.opts.TestUser.Password)
	if err != nil {
		return nil, err
	}

	user = &model.User{
		Email:        g.opts.TestUser.Email,
		Name:         g.opts.TestUser.Name,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := g.users.Create(ctx, user); err != nil {
		// Another request created it first.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return g.users.GetByEmail(ctx, g.opts.TestUser.Email)
		}
		return nil, err
	}

	slog.Warn("auth bypass created test user", "user_id", user.ID, "email", user.Email)
	return user, nil
}
