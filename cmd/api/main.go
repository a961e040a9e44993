package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/alphalabs/mobile-api/internal/config"
	"github.com/alphalabs/mobile-api/internal/crypto"
	"github.com/alphalabs/mobile-api/internal/handler"
	"github.com/alphalabs/mobile-api/internal/middleware"
	"github.com/alphalabs/mobile-api/internal/repository"
	"github.com/alphalabs/mobile-api/internal/service"
	"github.com/alphalabs/mobile-api/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewDB(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	hasher := crypto.NewPasswordHasher(cfg.BcryptCost)
	users := repository.NewUserRepository(db)

	client, err := service.NewProvisioner(repository.NewClientRepository(db), users, hasher).EnsureDefaultClient(ctx)
	if err != nil {
		return err
	}
	logger.Debug("default client ready", "client_id", client.ID)

	tokens, err := crypto.NewTokenIssuer(crypto.TokenConfig{
		Secret:    cfg.JWTSecret,
		Algorithm: cfg.JWTAlgorithm,
		Expiry:    cfg.JWTExpiry,
		Issuer: crypto.IssuerInfo{
			Name:        cfg.JWTIssuerName,
			Version:     cfg.JWTIssuerVersion,
			Environment: cfg.Env,
			URL:         cfg.PublicURL,
		},
	})
	if err != nil {
		return err
	}

	blobs, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	limiter, closeLimiter, err := newRateLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	if cfg.AuthDisabled {
		logger.Warn("authentication is disabled, every request runs as the test user", "email", cfg.TestUserEmail)
	}

	authService := service.NewAuthService(users, hasher, tokens)
	gate := service.NewGate(users, tokens, hasher, service.GateOptions{
		Disabled: cfg.AuthDisabled,
		TestUser: service.TestIdentity{
			Email:    cfg.TestUserEmail,
			Name:     cfg.TestUserName,
			Password: cfg.TestUserPassword,
		},
	})

	router := handler.NewRouter(handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Users:     handler.NewUserHandler(authService),
		Chats:     handler.NewChatHandler(service.NewChatService(repository.NewChatRepository(db), service.EchoResponder{})),
		Documents: handler.NewDocumentHandler(service.NewDocumentService(repository.NewDocumentRepository(db), blobs, cfg.MaxUploadSize)),
		Health:    handler.NewHealthHandler(db),
	}, handler.RouterConfig{
		Logger:            logger,
		Resolver:          gate,
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		RateLimit:         limiter,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env, "database", cfg.DatabaseDriver, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

// newRateLimiter picks the Redis-backed limiter when REDIS_URL is set so
// every replica shares one budget per client.
func newRateLimiter(ctx context.Context, cfg config.Config) (func(http.Handler) http.Handler, func(), error) {
	if cfg.RedisURL == "" {
		return middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst), func() {}, nil
	}

	rdb, err := repository.NewRedis(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}

	limit := int(cfg.RateLimitRPS * 60)
	if limit < cfg.RateLimitBurst {
		limit = cfg.RateLimitBurst
	}
	return middleware.SharedRateLimit(rdb, limit, time.Minute), func() { rdb.Close() }, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
