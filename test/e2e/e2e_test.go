// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/models"
	"mergington-activities/internal/registry"
	"mergington-activities/internal/server"
	"mergington-activities/pkg/seed"
)

const configTemplate = `
app:
  name: activities-api-e2e
  environment: test
server:
  static_dir: %s
registry:
  backend: redis
  seed_path: %s
database:
  redis:
    address: ${E2E_REDIS_ADDRESS}
    key_prefix: e2e
`

type stack struct {
	cfg    *config.Config
	server *httptest.Server
	redis  *database.RedisClient
}

// startStack boots the API the way cmd/activities-api does, against redisAddr.
func startStack(t *testing.T, redisAddr string) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	staticDir := filepath.Join(dir, "static")
	require.NoError(t, os.MkdirAll(staticDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<title>Mergington High School Activities</title>"), 0o644))

	seedPath := filepath.Join(dir, "seed-activities.json")
	require.NoError(t, seed.Save(seedPath, seed.Default()))

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(configTemplate, staticDir, seedPath)), 0o644))

	t.Setenv("E2E_REDIS_ADDRESS", redisAddr)
	cfg, err := config.LoadFromFile(configPath)
	require.NoError(t, err)
	require.Equal(t, config.BackendRedis, cfg.Registry.Backend)

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	require.NoError(t, rdb.Ping(context.Background()))
	t.Cleanup(func() { _ = rdb.Close() })

	file, err := seed.Load(cfg.Registry.SeedPath)
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	reg := registry.New(file.ToActivities(), registry.Dependencies{
		Store:        registry.NewRedisStore(rdb.Client, cfg.Database.Redis.KeyPrefix),
		Logger:       log,
		StoreTimeout: config.GetDuration(cfg.Registry.Timeout),
	})
	require.NoError(t, reg.Restore(context.Background()))

	srv := server.New(cfg, server.Dependencies{
		Registry:  reg,
		Logger:    log,
		Readiness: map[string]server.Pinger{"redis": rdb},
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &stack{cfg: cfg, server: ts, redis: rdb}
}

func (s *stack) do(t *testing.T, method, path string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, s.server.URL+path, nil)
	require.NoError(t, err)

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func (s *stack) activities(t *testing.T) models.ActivityMap {
	t.Helper()
	resp, body := s.do(t, http.MethodGet, "/activities")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.ActivityMap
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func signupPath(activity, email string) string {
	return fmt.Sprintf("/activities/%s/signup?email=%s", url.PathEscape(activity), url.QueryEscape(email))
}

func TestFullE2E(t *testing.T) {
	mr := miniredis.RunT(t)
	s := startStack(t, mr.Addr())

	t.Run("landing page", func(t *testing.T) {
		resp, _ := s.do(t, http.MethodGet, "/")
		assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		assert.Equal(t, "/static/index.html", resp.Header.Get("Location"))

		resp, body := s.do(t, http.MethodGet, "/static/index.html")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "Mergington High School")
	})

	t.Run("signup", func(t *testing.T) {
		before := len(s.activities(t)["Basketball Team"].Participants)

		resp, body := s.do(t, http.MethodPost, signupPath("Basketball Team", "test@mergington.edu"))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"message":"Signed up test@mergington.edu for Basketball Team"}`, string(body))

		participants := s.activities(t)["Basketball Team"].Participants
		assert.Len(t, participants, before+1)
		assert.Contains(t, participants, "test@mergington.edu")
	})

	t.Run("unregister", func(t *testing.T) {
		resp, body := s.do(t, http.MethodDelete, signupPath("Chess Club", "michael@mergington.edu"))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "Unregistered")
		assert.Contains(t, string(body), "michael@mergington.edu")

		assert.NotContains(t, s.activities(t)["Chess Club"].Participants, "michael@mergington.edu")
	})

	t.Run("errors", func(t *testing.T) {
		resp, body := s.do(t, http.MethodPost, signupPath("Underwater Basket Weaving", "a@mergington.edu"))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.JSONEq(t, `{"detail":"Activity not found"}`, string(body))

		resp, body = s.do(t, http.MethodDelete, signupPath("Chess Club", "nobody@mergington.edu"))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.JSONEq(t, `{"detail":"Participant not found"}`, string(body))
	})

	t.Run("rosters persisted", func(t *testing.T) {
		raw, err := mr.Get("e2e:roster:Basketball Team")
		require.NoError(t, err)
		assert.Contains(t, raw, "test@mergington.edu")

		restarted := startStack(t, mr.Addr())
		activities := restarted.activities(t)
		assert.Contains(t, activities["Basketball Team"].Participants, "test@mergington.edu")
		assert.NotContains(t, activities["Chess Club"].Participants, "michael@mergington.edu")
	})

	t.Run("ready", func(t *testing.T) {
		resp, _ := s.do(t, http.MethodGet, "/ready")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		mr.SetError("LOADING Redis is loading the dataset in memory")
		defer mr.SetError("")

		resp, _ = s.do(t, http.MethodGet, "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}
