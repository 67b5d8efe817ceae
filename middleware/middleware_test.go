package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-blog-backend/config"
	"go-blog-backend/database"
	"go-blog-backend/logger"
	"go-blog-backend/models"
	"go-blog-backend/schemas"
	"go-blog-backend/security"
)

func init() { gin.SetMode(gin.TestMode) }

type authFixture struct {
	db     *gorm.DB
	auth   *Authenticator
	tokens *security.Tokens
}

func setupAuth(t *testing.T) *authFixture {
	t.Helper()
	cfg := config.Defaults()
	cfg.DBPath = filepath.Join(t.TempDir(), "auth.db")
	db, err := database.Open(cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))

	tokens := security.NewTokens("0123456789abcdef0123456789abcdef", time.Hour)
	sessions := database.NewSessions(db, 1, time.Second, nil)
	return &authFixture{db: db, auth: NewAuthenticator(sessions, tokens), tokens: tokens}
}

func (f *authFixture) user(t *testing.T, name string, admin, active bool) (*models.User, string) {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x", IsAdmin: admin, IsActive: active}
	require.NoError(t, f.db.Create(u).Error)
	token, _, err := f.tokens.Issue(u.ID, time.Hour)
	require.NoError(t, err)
	return u, token
}

func (f *authFixture) router() *gin.Engine {
	r := gin.New()
	whoami := func(c *gin.Context) {
		if u, ok := CurrentUser(c); ok {
			c.JSON(http.StatusOK, gin.H{"user": u.Username})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": ""})
	}
	r.GET("/user", f.auth.RequireUser(), whoami)
	r.GET("/admin", f.auth.RequireAdmin(), whoami)
	r.GET("/optional", f.auth.OptionalUser(), whoami)
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body schemas.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestRequireUser(t *testing.T) {
	f := setupAuth(t)
	_, token := f.user(t, "alice", false, true)
	r := f.router()

	w := do(r, "/user", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", errorCode(t, w))

	w = do(r, "/user", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/user", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestRequireUserRejectsUnknownAndDisabled(t *testing.T) {
	f := setupAuth(t)
	r := f.router()

	ghost, _, err := f.tokens.Issue(999, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/user", ghost).Code)

	u, token := f.user(t, "carol", false, true)
	require.NoError(t, f.db.Model(u).Update("is_active", false).Error)
	w := do(r, "/user", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", errorCode(t, w))
}

func TestRequireAdmin(t *testing.T) {
	f := setupAuth(t)
	_, userToken := f.user(t, "bob", false, true)
	_, adminToken := f.user(t, "root", true, true)
	r := f.router()

	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", userToken).Code)
	assert.Equal(t, http.StatusOK, do(r, "/admin", adminToken).Code)
}

func TestOptionalUser(t *testing.T) {
	f := setupAuth(t)
	_, token := f.user(t, "dave", false, true)
	r := f.router()

	w := do(r, "/optional", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":""`)

	w = do(r, "/optional", "garbage")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, "/optional", token)
	assert.Contains(t, w.Body.String(), "dave")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/messages", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })
	post := func(ip string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodPost, "/messages", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, post("10.0.0.1").Code)
	assert.Equal(t, http.StatusCreated, post("10.0.0.1").Code)
	w := post("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", errorCode(t, w))

	assert.Equal(t, http.StatusCreated, post("10.0.0.2").Code, "other clients are unaffected")

	now = now.Add(2 * time.Second)
	assert.Equal(t, http.StatusCreated, post("10.0.0.1").Code, "tokens refill")

	now = now.Add(10 * time.Minute)
	post("10.0.0.3")
	assert.Len(t, rl.limiters, 1, "idle clients are forgotten")
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithOutput("info", true, &buf)

	r := gin.New()
	r.Use(RequestID(), Logger(log), Recovery(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	req, _ := http.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.Split(buf.Bytes(), []byte("\n"))[0], &line))
	assert.Equal(t, "abc-123", line["request_id"])
	assert.Equal(t, "/ok", line["route"])
	assert.EqualValues(t, http.StatusNoContent, line["status"])

	req, _ = http.NewRequest(http.MethodGet, "/panic", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal", errorCode(t, w))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), "kaboom")
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.GET("/", Timeout(time.Second), func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})
	w := do(r, "/", "")
	assert.JSONEq(t, `{"deadline":true}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://blog.example"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://blog.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://blog.example", w.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
