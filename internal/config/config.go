package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "dev-secret-change-in-production"

var (
	ErrDefaultSecretInProduction = errors.New("JWT_SECRET must be set in production environment")
	ErrAuthBypassInProduction    = errors.New("AUTH_DISABLED cannot be enabled in production environment")
	ErrUnsupportedDatabase       = errors.New("DATABASE_DRIVER must be one of mysql, postgres, sqlite")
	ErrUnsupportedStorage        = errors.New("STORAGE_DRIVER must be one of local, s3")
	ErrMissingBucket             = errors.New("S3_BUCKET is required when STORAGE_DRIVER=s3")
	ErrInvalidValue              = errors.New("invalid environment value")
)

// Config holds all runtime settings. It is loaded once in main and passed
// by value into constructors.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseDriver string
	DatabaseDSN    string
	RedisURL       string

	JWTSecret        string
	JWTAlgorithm     string
	JWTExpiry        time.Duration
	JWTIssuerName    string
	JWTIssuerVersion string
	PublicURL        string
	BcryptCost       int

	AuthDisabled     bool
	TestUserEmail    string
	TestUserName     string
	TestUserPassword string

	Storage       StorageConfig
	MaxUploadSize int64

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

// StorageConfig selects and configures the document blob backend.
type StorageConfig struct {
	Driver      string
	UploadDir   string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	env := &envReader{}
	cfg := Config{
		Port:     getEnv("PORT", "8000"),
		Env:      getEnv("ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "mysql"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/alphalabs_mobile?parseTime=true"),
		RedisURL:       getEnv("REDIS_URL", ""),

		JWTSecret:        getEnv("JWT_SECRET", defaultJWTSecret),
		JWTAlgorithm:     getEnv("JWT_ALGORITHM", "HS256"),
		JWTExpiry:        env.getDuration("JWT_EXPIRY", 24*time.Hour),
		JWTIssuerName:    getEnv("JWT_ISSUER_NAME", "alpha-labs-mobile-api"),
		JWTIssuerVersion: getEnv("JWT_ISSUER_VERSION", "1.0.0"),
		PublicURL:        getEnv("PUBLIC_URL", "http://localhost:8000"),
		BcryptCost:       env.getInt("BCRYPT_COST", 10),

		AuthDisabled:     env.getBool("AUTH_DISABLED", false),
		TestUserEmail:    getEnv("TEST_USER_EMAIL", "test@alphalabs.com"),
		TestUserName:     getEnv("TEST_USER_NAME", "Test User"),
		TestUserPassword: getEnv("TEST_USER_PASSWORD", "password123"),

		Storage: StorageConfig{
			Driver:      getEnv("STORAGE_DRIVER", "local"),
			UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
			S3Bucket:    getEnv("S3_BUCKET", ""),
			S3Region:    getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:  getEnv("S3_ENDPOINT", ""),
			S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		MaxUploadSize: int64(env.getInt("MAX_UPLOAD_SIZE", 50*1024*1024)),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:       env.getFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     env.getInt("RATE_LIMIT_BURST", 10),
		TrustProxyHeaders:  env.getBool("TRUST_PROXY_HEADERS", false),
	}

	if err := errors.Join(env.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in the production environment.
func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate checks settings that would make the service unsafe or unusable.
func (c Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return ErrDefaultSecretInProduction
	}
	if c.IsProduction() && c.AuthDisabled {
		return ErrAuthBypassInProduction
	}

	switch c.DatabaseDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return ErrUnsupportedDatabase
	}

	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return ErrMissingBucket
		}
	default:
		return ErrUnsupportedStorage
	}

	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive, got %s", c.JWTExpiry)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", c.MaxUploadSize)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envReader parses typed variables. Unset variables take the fallback; set
// but malformed ones are recorded so Load can refuse them.
type envReader struct {
	errs []error
}

func (e *envReader) invalid(key, value, kind string) {
	e.errs = append(e.errs, fmt.Errorf("%w: %s=%q is not a valid %s", ErrInvalidValue, key, value, kind))
}

func (e *envReader) getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.invalid(key, v, "integer")
		return fallback
	}
	return n
}

func (e *envReader) getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.invalid(key, v, "number")
		return fallback
	}
	return f
}

func (e *envReader) getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.invalid(key, v, "boolean")
		return fallback
	}
	return b
}

func (e *envReader) getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.invalid(key, v, "duration")
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
