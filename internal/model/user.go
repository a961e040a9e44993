package model

import "time"

// User represents a user in the database.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=63"`
	Name     string `json:"name" validate:"required,max=63"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest represents the OAuth2-style password form used by /login.
type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// SigninRequest represents a JSON signin request.
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by /register and /login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// IssuerResponse describes the token issuer to mobile clients.
type IssuerResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	URL         string `json:"url"`
}

// SigninResponse is returned by /signin.
type SigninResponse struct {
	Token  string         `json:"token"`
	User   UserResponse   `json:"user"`
	Issuer IssuerResponse `json:"issuer"`
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
	ClientID *int64 `json:"client_id,omitempty"`
}

// UpdateProfileRequest represents a profile update.
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,max=63"`
}

// ChangePasswordRequest represents a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,max=72"`
}

// NewUserResponse converts a User to its API representation.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		IsActive: u.IsActive,
	}
}
