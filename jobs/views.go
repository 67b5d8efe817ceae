// views.go - Periodically copies cached view counters into the database

package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"go-blog-backend/cache"
	"go-blog-backend/database"
	"go-blog-backend/metrics"
	"go-blog-backend/repository"
)

const syncTimeout = 2 * time.Minute

// ViewSync writes the view counters kept in the cache back to the articles
// table. Counters only ever raise the stored value, so a run that races
// with direct database increments never loses views.
type ViewSync struct {
	Sessions *database.Sessions
	Cache    cache.Cache
	Log      *logrus.Logger
	Metrics  *metrics.Metrics
}

// Run performs one sync pass and returns how many articles were updated.
func (v *ViewSync) Run(ctx context.Context) (int, error) {
	if !v.Cache.Enabled() {
		return 0, nil
	}
	keys, err := v.Cache.Keys(ctx, cache.ArticleViewsPattern)
	if err != nil {
		return 0, fmt.Errorf("list view counters: %w", err)
	}

	updated := 0
	for _, key := range keys {
		id, ok := cache.ParseArticleViewsKey(key)
		if !ok {
			continue
		}
		n, found, err := v.Cache.GetInt(ctx, key)
		if err != nil {
			return updated, fmt.Errorf("read %s: %w", key, err)
		}
		if !found {
			continue // expired or deleted since the scan
		}
		var raised bool
		err = v.Sessions.Do(ctx, func(tx *gorm.DB) error {
			var err error
			raised, err = repository.Articles(tx).RaiseViews(id, n)
			return err
		})
		if err != nil {
			return updated, fmt.Errorf("sync views of article %d: %w", id, err)
		}
		if raised {
			updated++
		}
	}
	return updated, nil
}

// Schedule registers the job on c.
func (v *ViewSync) Schedule(c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		start := time.Now()
		n, err := v.Run(ctx)
		if err != nil {
			v.Metrics.ViewSync("error")
			v.Log.WithError(err).Error("view sync failed")
			return
		}
		v.Metrics.ViewSync("ok")
		v.Log.WithFields(logrus.Fields{
			"updated":  n,
			"duration": time.Since(start).String(),
		}).Info("view counters synced")
	})
	if err != nil {
		return fmt.Errorf("schedule view sync %q: %w", spec, err)
	}
	return nil
}
