// handler.go - Shared dependencies and request helpers for all HTTP handlers

package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"go-blog-backend/apperr"
	"go-blog-backend/cache"
	"go-blog-backend/config"
	"go-blog-backend/database"
	"go-blog-backend/logger"
	"go-blog-backend/metrics"
	"go-blog-backend/middleware"
	"go-blog-backend/models"
	"go-blog-backend/repository"
	"go-blog-backend/schemas"
	"go-blog-backend/security"
	"go-blog-backend/storage"
)

// Deps is everything a handler may touch. It is built once in main and
// passed down explicitly; handlers never reach for globals.
type Deps struct {
	Config   *config.Config
	Sessions *database.Sessions
	Tokens   *security.Tokens
	Cache    cache.Cache         // optional, defaults to no cache
	Store    storage.ObjectStore // where uploads go
	Hub      *Hub                // live message feed
	Log      *logrus.Logger
	Metrics  *metrics.Metrics
}

type Handler struct {
	Deps
	now func() time.Time
}

func New(d Deps) *Handler {
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	if d.Cache == nil {
		d.Cache = cache.Noop{}
	}
	if d.Hub == nil {
		d.Hub = NewHub(d.Log)
	}
	return &Handler{Deps: d, now: time.Now}
}

// tx runs fn in one request-scoped transaction.
func (h *Handler) tx(c *gin.Context, fn func(tx *gorm.DB) error) error {
	return h.Sessions.Do(c.Request.Context(), fn)
}

// log returns a logger entry tagged with the request id.
func (h *Handler) log(c *gin.Context) *logrus.Entry {
	return h.Log.WithField("request_id", middleware.GetRequestID(c))
}

// forget drops cache entries; a failure only costs freshness.
func (h *Handler) forget(ctx context.Context, keys ...string) {
	if err := h.Cache.Delete(ctx, keys...); err != nil {
		h.Log.WithError(err).WithField("keys", keys).Warn("cache invalidation failed")
	}
}

func fail(c *gin.Context, err error) { middleware.WriteError(c, err) }

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, schemas.BindError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		fail(c, schemas.BindError(err))
		return false
	}
	return true
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		fail(c, apperr.Validation("request validation failed", map[string]string{
			name: "must be a positive integer",
		}))
		return 0, false
	}
	return uint(id), true
}

func pageOf(q schemas.PageQuery) (repository.Page, int, int) {
	page, size := q.Normalize()
	return repository.Page{Number: page, Size: size}, page, size
}

// isAdmin reports whether the request carries an administrator.
func isAdmin(c *gin.Context) bool {
	user, ok := middleware.CurrentUser(c)
	return ok && user.IsAdmin
}

// mustUser returns the user set by RequireUser or RequireAdmin.
func mustUser(c *gin.Context) *models.User {
	user, _ := middleware.CurrentUser(c)
	return user
}
