package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/alphalabs/mobile-api/internal/crypto"
	"github.com/alphalabs/mobile-api/internal/repository"
	"github.com/alphalabs/mobile-api/internal/repository/repotest"
	"github.com/alphalabs/mobile-api/internal/service"
	"github.com/alphalabs/mobile-api/internal/storage"
)

const testMaxUpload = 1024

type testServer struct {
	t      *testing.T
	db     *repository.DB
	router http.Handler
	tokens *crypto.TokenIssuer
}

func newTestServer(t *testing.T, gateOpts service.GateOptions, opts ...func(*RouterConfig)) *testServer {
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

	blobs, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	hasher := crypto.NewPasswordHasher(bcrypt.MinCost)
	users := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(users, hasher, tokens)

	cfg := RouterConfig{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Resolver:       service.NewGate(users, tokens, hasher, gateOpts),
		AllowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	router := NewRouter(Handlers{
		Auth:      NewAuthHandler(authSvc),
		Users:     NewUserHandler(authSvc),
		Chats:     NewChatHandler(service.NewChatService(repository.NewChatRepository(db), service.EchoResponder{})),
		Documents: NewDocumentHandler(service.NewDocumentService(repository.NewDocumentRepository(db), blobs, testMaxUpload)),
		Health:    NewHealthHandler(db),
	}, cfg)

	return &testServer{t: t, db: db, router: router, tokens: tokens}
}

func (s *testServer) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	s.t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doWithHeaders(method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	s.t.Helper()

	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doJSON(method, path, token string, payload any) *httptest.ResponseRecorder {
	s.t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(s.t, err)
		body = bytes.NewReader(data)
	}
	return s.do(method, path, token, body, "application/json")
}

// register creates an account and returns its bearer token.
func (s *testServer) register(email, name, password string) string {
	s.t.Helper()

	rec := s.doJSON(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "name": name, "password": password,
	})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decode(s.t, rec, &resp)
	return resp.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
