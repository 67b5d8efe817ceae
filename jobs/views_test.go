package jobs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-blog-backend/cache"
	"go-blog-backend/config"
	"go-blog-backend/database"
	"go-blog-backend/logger"
	"go-blog-backend/metrics"
	"go-blog-backend/models"
)

func setup(t *testing.T) (*ViewSync, *gorm.DB, *cache.Redis) {
	t.Helper()
	cfg := config.Defaults()
	cfg.DBPath = filepath.Join(t.TempDir(), "jobs.db")
	db, err := database.Open(cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	m := metrics.New()
	rc, err := cache.NewRedis(context.Background(), mr.Addr(), "", 0, m)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	return &ViewSync{
		Sessions: database.NewSessions(db, database.PoolSize(cfg), time.Second, m),
		Cache:    rc,
		Log:      logger.Discard(),
		Metrics:  m,
	}, db, rc
}

func seedArticle(t *testing.T, db *gorm.DB, views int64) uint {
	t.Helper()
	u := models.User{Username: "writer", Email: "writer@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	a := models.Article{Title: "Post", Slug: "post", Content: "body", AuthorID: u.ID, IsPublished: true, ViewCount: views}
	require.NoError(t, db.Omit("Author").Create(&a).Error)
	return a.ID
}

func TestViewSyncRaisesCounters(t *testing.T) {
	job, db, rc := setup(t)
	ctx := context.Background()
	id := seedArticle(t, db, 10)

	_, err := rc.SetNX(ctx, cache.ArticleViewsKey(id), 10)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := rc.Incr(ctx, cache.ArticleViewsKey(id))
		require.NoError(t, err)
	}
	require.NoError(t, rc.SetJSON(ctx, cache.ArticleKey(id), map[string]int{"id": int(id)}, time.Minute))

	n, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var a models.Article
	require.NoError(t, db.First(&a, id).Error)
	assert.Equal(t, int64(15), a.ViewCount)

	n, err = job.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "an unchanged counter is not written again")
}

func TestViewSyncNeverLowersCounter(t *testing.T) {
	job, db, rc := setup(t)
	ctx := context.Background()
	id := seedArticle(t, db, 100)

	_, err := rc.SetNX(ctx, cache.ArticleViewsKey(id), 3)
	require.NoError(t, err)

	_, err = job.Run(ctx)
	require.NoError(t, err)

	var a models.Article
	require.NoError(t, db.First(&a, id).Error)
	assert.Equal(t, int64(100), a.ViewCount)
}

func TestViewSyncWithoutCache(t *testing.T) {
	job, _, _ := setup(t)
	job.Cache = cache.Noop{}
	n, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	job, _, _ := setup(t)
	c := cron.New()
	assert.Error(t, job.Schedule(c, "every now and then"))
	assert.NoError(t, job.Schedule(c, "@every 10m"))
	assert.Len(t, c.Entries(), 1)
}
