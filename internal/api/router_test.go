package api_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"customer-store/internal/api"
	"customer-store/internal/config"
	"customer-store/internal/domain/customer"
	"customer-store/internal/infrastructure/database/memory"
	"customer-store/internal/infrastructure/remote"
	"customer-store/internal/state"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			RateLimit: config.RateLimitConfig{Enabled: false},
		},
		Metrics: config.MetricsConfig{Path: "/metrics"},
	}
}

type stack struct {
	sandbox *httptest.Server
	view    *httptest.Server
	store   *state.Store
	effects *state.Effects
}

// newStack wires a sandbox backend, the REST client, the store with its
// effects and the view API, the same way the binaries do.
func newStack(t *testing.T, cfg *config.Config, token string) *stack {
	t.Helper()

	repo := memory.NewCustomerRepository(logger)
	svc := customer.NewCustomerService(repo, nil, logger)
	sandbox := httptest.NewServer(api.SetupSandboxRouter(svc, cfg, nil, logger))
	t.Cleanup(sandbox.Close)

	var opts []remote.Option
	if token != "" {
		opts = append(opts, remote.WithBearerToken(token))
	}
	client, err := remote.NewCustomerClient(sandbox.URL, logger, opts...)
	require.NoError(t, err)

	store := state.NewStore(logger)
	effects := state.NewEffects(client, store, logger)
	store.Subscribe(effects.Handle)

	view := httptest.NewServer(api.SetupViewRouter(store, cfg, logger))
	t.Cleanup(view.Close)

	return &stack{sandbox: sandbox, view: view, store: store, effects: effects}
}

func (s *stack) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.view.URL+path, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	s := newStack(t, testConfig(), "")

	resp := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStoreRoundTripThroughSandbox(t *testing.T) {
	s := newStack(t, testConfig(), "")

	resp := s.do(t, http.MethodPost, "/store/customers", `{"name":"Ann","city":"Oslo"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	s.effects.Wait()

	customers := decode[[]map[string]any](t, s.do(t, http.MethodGet, "/store/customers", ""))
	require.Len(t, customers, 1)
	assert.Equal(t, "Ann", customers[0]["name"])
	assert.Equal(t, float64(1), customers[0]["id"])

	resp = s.do(t, http.MethodPatch, "/store/customers/1", `{"name":"Anna"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	s.effects.Wait()

	resp = s.do(t, http.MethodPost, "/store/customers/1/load", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	s.effects.Wait()

	current := decode[map[string]any](t, s.do(t, http.MethodGet, "/store/customers/current", ""))
	assert.Equal(t, "Anna", current["name"])
	assert.Equal(t, "Oslo", current["city"])

	resp = s.do(t, http.MethodDelete, "/store/customers/1", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	s.effects.Wait()

	status := decode[map[string]any](t, s.do(t, http.MethodGet, "/store/status", ""))
	assert.Equal(t, float64(0), status["total"])
	assert.Nil(t, status["selectedCustomerId"])
	assert.Nil(t, status["error"])

	resp = s.do(t, http.MethodGet, "/store/customers/current", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStoreRecordsRemoteFailures(t *testing.T) {
	s := newStack(t, testConfig(), "")

	resp := s.do(t, http.MethodPost, "/store/customers/42/load", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	s.effects.Wait()

	status := decode[map[string]any](t, s.do(t, http.MethodGet, "/store/status", ""))
	assert.Contains(t, status["error"], "404")

	resp = s.do(t, http.MethodPost, "/store/customers/load", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	s.effects.Wait()

	assert.True(t, state.SelectLoaded(s.store.State()))
}

func TestSandboxAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Auth = config.AuthConfig{Enabled: true, JWTSecret: "sandbox-secret"}

	t.Run("rejects the store without a token", func(t *testing.T) {
		s := newStack(t, cfg, "")

		s.do(t, http.MethodPost, "/store/customers/load", "")
		s.effects.Wait()

		assert.Contains(t, state.SelectError(s.store.State()), "401")
		assert.False(t, state.SelectLoaded(s.store.State()))
	})

	t.Run("accepts a signed token", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"username": "store",
			"exp":      time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("sandbox-secret"))
		require.NoError(t, err)
		s := newStack(t, cfg, tok)

		s.do(t, http.MethodPost, "/store/customers/load", "")
		s.effects.Wait()

		assert.Equal(t, "", state.SelectError(s.store.State()))
		assert.True(t, state.SelectLoaded(s.store.State()))
	})

	t.Run("issues tokens", func(t *testing.T) {
		s := newStack(t, cfg, "")

		resp, err := http.Post(s.sandbox.URL+"/auth/token", "application/json", strings.NewReader(`{"username":"ann"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
