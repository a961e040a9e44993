package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alphalabs/mobile-api/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Chats     *ChatHandler
	Documents *DocumentHandler
	Health    *HealthHandler
}

// RouterConfig carries the cross-cutting middleware settings.
type RouterConfig struct {
	Logger         *slog.Logger
	Resolver       middleware.UserResolver
	AllowedOrigins []string
	// RateLimit guards the credential endpoints. Nil disables it.
	RateLimit func(http.Handler) http.Handler
	// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For and
	// X-Real-IP. Without it clients cannot choose their rate-limit key.
	TrustProxyHeaders bool
}

// NewRouter wires the HTTP routes.
func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/", h.Health.HandleRoot)
	r.Get("/health", h.Health.HandleHealth)
	r.Handle("/metrics", promhttp.Handler())

	authenticate := middleware.Authenticate(cfg.Resolver)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if cfg.RateLimit != nil {
					r.Use(cfg.RateLimit)
				}
				r.Post("/register", h.Auth.HandleRegister)
				r.Post("/login", h.Auth.HandleLogin)
				r.Post("/signin", h.Auth.HandleSignin)
			})

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/me", h.Auth.HandleMe)
				r.Post("/password", h.Auth.HandleChangePassword)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.Users.HandleList)
				r.Get("/me", h.Auth.HandleMe)
				r.Put("/me", h.Users.HandleUpdateMe)
			})

			r.Route("/chat", func(r chi.Router) {
				r.Post("/", h.Chats.HandleCreate)
				r.Get("/", h.Chats.HandleList)
				r.Post("/{chatID}/messages", h.Chats.HandleSendMessage)
				r.Get("/{chatID}/messages", h.Chats.HandleListMessages)
			})

			r.Route("/documents", func(r chi.Router) {
				r.Post("/upload", h.Documents.HandleUpload)
				r.Get("/", h.Documents.HandleList)
				r.Get("/{documentID}", h.Documents.HandleGet)
				r.Get("/{documentID}/content", h.Documents.HandleContent)
				r.Delete("/{documentID}", h.Documents.HandleDelete)
			})
		})
	})

	return r
}
