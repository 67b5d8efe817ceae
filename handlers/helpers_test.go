package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-blog-backend/cache"
	"go-blog-backend/config"
	"go-blog-backend/database"
	"go-blog-backend/handlers"
	"go-blog-backend/logger"
	"go-blog-backend/metrics"
	"go-blog-backend/models"
	"go-blog-backend/router"
	"go-blog-backend/security"
	"go-blog-backend/storage"
)

func init() { gin.SetMode(gin.TestMode) }

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	hub    *handlers.Hub
	tokens *security.Tokens
	cache  cache.Cache
	redis  *miniredis.Miniredis
	prefix string

	sessions *database.Sessions
}

// setupServer builds the full router over a fresh SQLite database.
func setupServer(t *testing.T, configure ...func(*config.Config)) *testServer {
	t.Helper()
	return newServer(t, false, configure...)
}

// setupCachedServer is setupServer backed by an in-memory Redis.
func setupCachedServer(t *testing.T, configure ...func(*config.Config)) *testServer {
	t.Helper()
	return newServer(t, true, configure...)
}

func newServer(t *testing.T, useRedis bool, configure ...func(*config.Config)) *testServer {
	t.Helper()
	cfg := config.Defaults()
	cfg.DBPath = filepath.Join(t.TempDir(), "test.db")
	cfg.UploadDir = filepath.Join(t.TempDir(), "uploads")
	cfg.RateLimitRPS = 1000
	cfg.RateLimitBurst = 1000
	for _, fn := range configure {
		fn(cfg)
	}

	log := logger.Discard()
	m := metrics.New()
	db, err := database.Open(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))

	s := &testServer{db: db, cfg: cfg, cache: cache.Noop{}, prefix: cfg.APIPrefix}
	if useRedis {
		s.redis = miniredis.RunT(t)
		rc, err := cache.NewRedis(context.Background(), s.redis.Addr(), "", 0, m)
		require.NoError(t, err)
		t.Cleanup(func() { _ = rc.Close() })
		s.cache = rc
	}

	store, err := storage.NewLocal(cfg.UploadDir, cfg.UploadBaseURL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	s.hub = handlers.NewHub(log)
	go s.hub.Run(ctx)

	s.tokens = security.NewTokens(cfg.SecretKey, cfg.TokenTTL)
	s.sessions = database.NewSessions(db, database.PoolSize(cfg), time.Second, m)
	s.engine = router.New(handlers.Deps{
		Config:   cfg,
		Sessions: s.sessions,
		Tokens:   s.tokens,
		Cache:    s.cache,
		Store:    store,
		Hub:      s.hub,
		Log:      log,
		Metrics:  m,
	})
	return s
}

// do sends a JSON request to an API path and records the response.
func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, s.prefix+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// signup registers username and returns a token for it.
func (s *testServer) signup(t *testing.T, username string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": username, "password": "pw123456"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[map[string]any](t, w)["token"].(string)
}

// admin registers username and grants it administrator rights.
func (s *testServer) admin(t *testing.T, username string) string {
	t.Helper()
	token := s.signup(t, username)
	require.NoError(t, s.db.Model(&models.User{}).Where("username = ?", username).Update("is_admin", true).Error)
	return token
}

func (s *testServer) createArticle(t *testing.T, token string, body gin.H) uint {
	t.Helper()
	w := s.do(t, http.MethodPost, "/articles", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(decode[map[string]any](t, w)["id"].(float64))
}

func (s *testServer) createCategory(t *testing.T, token, name string) uint {
	t.Helper()
	w := s.do(t, http.MethodPost, "/categories", token, gin.H{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(decode[map[string]any](t, w)["id"].(float64))
}

func path(format string, args ...any) string { return fmt.Sprintf(format, args...) }
