package service

import (
	"context"
	"errors"
	"strings"

	"github.com/alphalabs/mobile-api/internal/crypto"
	"github.com/alphalabs/mobile-api/internal/model"
	"github.com/alphalabs/mobile-api/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrNameRequired       = errors.New("name is required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrUserNotFound       = errors.New("user not found")
)

const tokenTypeBearer = "bearer"

// UserStore is the persistence the auth flows depend on.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	First(ctx context.Context) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// AuthService handles registration, login and profile business logic.
type AuthService struct {
	users  UserStore
	hasher *crypto.PasswordHasher
	tokens *crypto.TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, hasher *crypto.PasswordHasher, tokens *crypto.TokenIssuer) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a new user account and returns a bearer token for it.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.TokenResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return model.TokenResponse{}, ErrEmailRequired
	}
	if req.Password == "" {
		return model.TokenResponse{}, ErrPasswordRequired
	}
	if strings.TrimSpace(req.Name) == "" {
		return model.TokenResponse{}, ErrNameRequired
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.TokenResponse{}, err
	}

	user := &model.User{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		IsActive:     true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.TokenResponse{}, ErrEmailTaken
		}
		return model.TokenResponse{}, err
	}

	return s.tokenResponse(user)
}

// Login authenticates with the password form and returns a bearer token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.TokenResponse, error) {
	user, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return model.TokenResponse{}, err
	}

	return s.tokenResponse(user)
}

// Signin authenticates with JSON credentials and returns the token together
// with the user summary and the issuer descriptor.
func (s *AuthService) Signin(ctx context.Context, req model.SigninRequest) (model.SigninResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return model.SigninResponse{}, err
	}

	token, err := s.tokens.Issue(userClaim(user))
	if err != nil {
		return model.SigninResponse{}, err
	}

	clientID := model.DefaultClientID
	summary := model.NewUserResponse(user)
	summary.ClientID = &clientID

	issuer := s.tokens.Issuer()
	return model.SigninResponse{
		Token: token,
		User:  summary,
		Issuer: model.IssuerResponse{
			Name:        issuer.Name,
			Version:     issuer.Version,
			Environment: issuer.Environment,
			URL:         issuer.URL,
		},
	}, nil
}

// GetUser retrieves a user by ID and returns safe user data.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	return model.NewUserResponse(user), nil
}

// UpdateProfile changes the user's display name.
func (s *AuthService) UpdateProfile(ctx context.Context, user *model.User, req model.UpdateProfileRequest) (model.UserResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.UserResponse{}, ErrNameRequired
	}

	updated := *user
	updated.Name = name
	if err := s.users.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	return model.NewUserResponse(&updated), nil
}

// ChangePassword replaces the user's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, user *model.User, req model.ChangePasswordRequest) error {
	if req.NewPassword == "" {
		return ErrPasswordRequired
	}
	if !s.hasher.Verify(req.CurrentPassword, user.PasswordHash) {
		return ErrWrongPassword
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	updated := *user
	updated.PasswordHash = hash
	if err := s.users.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// authenticate resolves credentials to an active user. Unknown email, wrong
// password and inactive account all yield ErrInvalidCredentials.
func (s *AuthService) authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthService) tokenResponse(user *model.User) (model.TokenResponse, error) {
	token, err := s.tokens.Issue(userClaim(user))
	if err != nil {
		return model.TokenResponse{}, err
	}

	return model.TokenResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
	}, nil
}

func userClaim(user *model.User) crypto.UserClaim {
	claim := crypto.UserClaim{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		ClientID: model.DefaultClientID,
	}
	if !user.CreatedAt.IsZero() {
		created := user.CreatedAt
		claim.CreatedAt = &created
	}
	return claim
}
