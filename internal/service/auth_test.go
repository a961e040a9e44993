package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphalabs/mobile-api/internal/model"
)

func registerAlice(t *testing.T, svc *AuthService) model.TokenResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), model.RegisterRequest{
		Email: "alice@example.com", Name: "Alice", Password: "s3cret-pass",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister_IssuesBearerToken(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()

	resp := registerAlice(t, svc)
	assert.Equal(t, "bearer", resp.TokenType)

	claims, err := env.tokens.Validate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.User.Email)
	assert.Equal(t, "Alice", claims.User.Name)
	assert.Equal(t, int64(1), claims.User.ClientID)
	assert.NotNil(t, claims.User.CreatedAt)

	stored, err := env.users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.True(t, env.hasher.Verify("s3cret-pass", stored.PasswordHash))
	assert.True(t, stored.IsActive)
}

func TestRegister_Twice(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()

	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Email: "alice@example.com", Name: "Other", Password: "another",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_MissingFields(t *testing.T) {
	svc := newTestEnv(t).authService()
	ctx := context.Background()

	_, err := svc.Register(ctx, model.RegisterRequest{Name: "A", Password: "p"})
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.Register(ctx, model.RegisterRequest{Email: "a@example.com", Name: "A"})
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = svc.Register(ctx, model.RegisterRequest{Email: "a@example.com", Password: "p"})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	registerAlice(t, svc)
	ctx := context.Background()

	resp, err := svc.Login(ctx, model.LoginRequest{Username: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(ctx, model.LoginRequest{Username: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, model.LoginRequest{Username: "nobody@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignin(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	registerAlice(t, svc)
	ctx := context.Background()

	_, err := svc.Signin(ctx, model.SigninRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.Signin(ctx, model.SigninRequest{Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "Alice", resp.User.Name)
	assert.True(t, resp.User.IsActive)
	require.NotNil(t, resp.User.ClientID)
	assert.Equal(t, int64(1), *resp.User.ClientID)
	assert.Equal(t, model.IssuerResponse{
		Name: "alpha-labs-mobile-api", Version: "1.0.0", Environment: "test", URL: "http://localhost:8000",
	}, resp.Issuer)

	claims, err := env.tokens.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.User.ID)
}

func TestSignin_InactiveUser(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	registerAlice(t, svc)
	ctx := context.Background()

	user, err := env.users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, env.users.Update(ctx, user))

	_, err = svc.Signin(ctx, model.SigninRequest{Email: "alice@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUser(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	registerAlice(t, svc)
	ctx := context.Background()

	user, err := env.users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserResponse{ID: user.ID, Email: "alice@example.com", Name: "Alice", IsActive: true}, got)

	_, err = svc.GetUser(ctx, user.ID+42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	registerAlice(t, svc)
	ctx := context.Background()

	user, err := env.users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	resp, err := svc.UpdateProfile(ctx, user, model.UpdateProfileRequest{Name: "  Alice Liddell "})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", resp.Name)

	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", stored.Name)

	_, err = svc.UpdateProfile(ctx, user, model.UpdateProfileRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	registerAlice(t, svc)
	ctx := context.Background()

	user, err := env.users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user, model.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "next-pass"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(ctx, user, model.ChangePasswordRequest{CurrentPassword: "s3cret-pass", NewPassword: "next-pass"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, model.LoginRequest{Username: "alice@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, model.LoginRequest{Username: "alice@example.com", Password: "next-pass"})
	assert.NoError(t, err)
}
