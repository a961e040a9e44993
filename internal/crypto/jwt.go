package crypto

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrUnsupportedAlgorithm = errors.New("unsupported token signing algorithm")
	ErrEmptySecret          = errors.New("token signing secret is empty")
)

const (
	tokenTypeAccess = "access"
	tokenUseAPI     = "api_access"
	audienceSuffix  = "-alpha-labs-mobile"
)

// IssuerInfo describes the service that minted a token.
type IssuerInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	URL         string `json:"url"`
}

// UserClaim is the snapshot of the user embedded in every token.
type UserClaim struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	ClientID  int64      `json:"client_id"`
	CreatedAt *time.Time `json:"created_at"`
}

// Claims represents the JWT claims for mobile API access tokens.
type Claims struct {
	jwt.RegisteredClaims
	IssuerInfo IssuerInfo `json:"issuer"`
	User       UserClaim  `json:"user"`
	TokenType  string     `json:"token_type"`
	TokenUse   string     `json:"token_use"`
}

// TokenConfig configures a TokenIssuer.
type TokenConfig struct {
	Secret    string
	Algorithm string
	Expiry    time.Duration
	Issuer    IssuerInfo

	// Clock overrides time.Now, mainly for tests.
	Clock func() time.Time
}

// TokenIssuer signs and validates access tokens with a shared HMAC secret.
type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
	expiry time.Duration
	issuer IssuerInfo
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer. Only HMAC algorithms are accepted.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if cfg.Secret == "" {
		return nil, ErrEmptySecret
	}

	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, ErrUnsupportedAlgorithm
	}

	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &TokenIssuer{
		secret: []byte(cfg.Secret),
		method: method,
		expiry: cfg.Expiry,
		issuer: cfg.Issuer,
		now:    now,
	}, nil
}

// Issuer returns the issuer descriptor stamped into tokens.
func (i *TokenIssuer) Issuer() IssuerInfo {
	return i.issuer
}

// Audience returns the audience claim, "<environment>-alpha-labs-mobile".
func (i *TokenIssuer) Audience() string {
	return i.issuer.Environment + audienceSuffix
}

// Issue creates a signed token for the given user snapshot.
// Expiry is exactly issued-at plus the configured lifetime.
func (i *TokenIssuer) Issue(user UserClaim) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer.Name,
			Subject:   strconv.FormatInt(user.ID, 10),
			Audience:  jwt.ClaimStrings{i.Audience()},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
			ID:        uuid.NewString(),
		},
		IssuerInfo: i.issuer,
		User:       user,
		TokenType:  tokenTypeAccess,
		TokenUse:   tokenUseAPI,
	}

	token := jwt.NewWithClaims(i.method, claims)
	return token.SignedString(i.secret)
}

// Validate parses and validates a token string, returning its claims.
// Every failure is reported as ErrInvalidToken.
func (i *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithIssuer(i.issuer.Name),
		jwt.WithAudience(i.Audience()),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	// A token is dead from the exact second of its expiry onwards.
	if !i.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrInvalidToken
	}
	if claims.User.ID <= 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
