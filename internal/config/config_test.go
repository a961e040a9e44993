package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "mysql", cfg.DatabaseDriver)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.False(t, cfg.AuthDisabled)
	assert.Equal(t, "test@alphalabs.com", cfg.TestUserEmail)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, int64(50*1024*1024), cfg.MaxUploadSize)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.TrustProxyHeaders)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("JWT_EXPIRY", "30m")
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 30*time.Minute, cfg.JWTExpiry)
	assert.True(t, cfg.AuthDisabled)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.TrustProxyHeaders)
}

func TestLoad_MalformedValuesAreRejected(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"JWT_EXPIRY", "1d"},
		{"MAX_UPLOAD_SIZE", "100MB"},
		{"AUTH_DISABLED", "maybe"},
		{"RATE_LIMIT_RPS", "fast"},
		{"BCRYPT_COST", "high"},
		{"TRUST_PROXY_HEADERS", "sometimes"},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			assert.ErrorIs(t, err, ErrInvalidValue)
			assert.ErrorContains(t, err, tc.key)
		})
	}
}

func TestLoad_ReportsEveryMalformedValue(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "soon")
	t.Setenv("RATE_LIMIT_BURST", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorContains(t, err, "JWT_EXPIRY")
	assert.ErrorContains(t, err, "RATE_LIMIT_BURST")
}

func TestLoad_ProductionGuards(t *testing.T) {
	t.Setenv("ENV", "production")

	_, err := Load()
	assert.ErrorIs(t, err, ErrDefaultSecretInProduction)

	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("AUTH_DISABLED", "true")
	_, err = Load()
	assert.ErrorIs(t, err, ErrAuthBypassInProduction)

	t.Setenv("AUTH_DISABLED", "false")
	_, err = Load()
	assert.NoError(t, err)
}

func TestValidate_Drivers(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	bad := cfg
	bad.DatabaseDriver = "oracle"
	assert.ErrorIs(t, bad.Validate(), ErrUnsupportedDatabase)

	bad = cfg
	bad.Storage.Driver = "ftp"
	assert.ErrorIs(t, bad.Validate(), ErrUnsupportedStorage)

	bad = cfg
	bad.Storage.Driver = "s3"
	assert.ErrorIs(t, bad.Validate(), ErrMissingBucket)

	bad.Storage.S3Bucket = "documents"
	assert.NoError(t, bad.Validate())
}
