package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kmilodenisglez/task-backend/internal/auth"
	"github.com/kmilodenisglez/task-backend/internal/ratelimiter"
	"github.com/kmilodenisglez/task-backend/internal/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Aa1!aaaa"

func testConfig() config {
	return config{
		Addr:      ":0",
		Env:       "test",
		LogLevel:  "debug",
		LogFormat: "json",
		Auth: authConfig{
			Secret:     "test-secret-that-is-long-enough-for-testing",
			Algorithm:  "HS256",
			TokenTTL:   30 * time.Minute,
			BcryptCost: bcrypt.MinCost,
		},
		RateLimit: ratelimiter.Config{
			Enabled:              false,
			RequestsPerTimeFrame: 100,
			TimeFrame:            time.Hour,
			Strategy:             ratelimiter.StrategySliding,
			KeyPrefix:            ratelimiter.DefaultKeyPrefix,
			ExemptPrefix:         "/health",
		},
	}
}

func newTestApplication(t *testing.T, opts ...func(*config)) *application {
	t.Helper()

	cfg := testConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	authenticator, err := auth.NewJWTAuthenticator(cfg.Auth.Secret, cfg.Auth.Algorithm, cfg.Auth.TokenTTL)
	require.NoError(t, err)

	return &application{
		config:        cfg,
		store:         store.NewMockStore(),
		authenticator: authenticator,
		rateLimiter:   ratelimiter.New(cfg.RateLimit),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func executeRequest(req *http.Request, h http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func newRequest(t *testing.T, method, path string, body any, token string) *http.Request {
	t.Helper()

	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			js, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(js)
		}
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeData[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env.Data
}

func decodeDetail(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body.Detail
}

func registerUser(t *testing.T, h http.Handler, email string) tokenResponse {
	t.Helper()
	rr := executeRequest(newRequest(t, http.MethodPost, "/api/v1/auth/register",
		map[string]string{"email": email, "password": testPassword}, ""), h)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeData[tokenResponse](t, rr)
}

type mockMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *mockMailer) Send(templateFile, username, email string, data any) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, templateFile+":"+email)
	if m.err != nil {
		return 0, m.err
	}
	return 200, nil
}

func (m *mockMailer) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}
