// cache.go - Optional read-through cache for hot reads and view counters

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDisabled is returned by the no-op cache for operations that have no
// sensible zero result.
var ErrDisabled = errors.New("cache disabled")

// Cache is the subset of Redis the blog uses. Every caller must treat a
// cache error as a miss; the database stays the source of truth.
type Cache interface {
	Enabled() bool
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	SetNX(ctx context.Context, key string, value int64) (bool, error)
	GetInt(ctx context.Context, key string) (int64, bool, error)
	Keys(ctx context.Context, pattern string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Key names.
const (
	SiteConfigKey         = "site:config"
	ResourceListVersion   = "resources:list:version"
	ArticleViewsPattern   = "article:*:views"
	articleDetailTemplate = "article:%d"
	articleViewsTemplate  = "article:%d:views"
)

func ArticleKey(id uint) string { return fmt.Sprintf(articleDetailTemplate, id) }

func ArticleViewsKey(id uint) string { return fmt.Sprintf(articleViewsTemplate, id) }

// ParseArticleViewsKey extracts the article id from a views key.
func ParseArticleViewsKey(key string) (uint, bool) {
	var id uint
	if _, err := fmt.Sscanf(key, articleViewsTemplate, &id); err != nil || id == 0 {
		return 0, false
	}
	return id, ArticleViewsKey(id) == key
}

// ResourceListKey names one cached page of the resource list. Bumping the
// version counter invalidates every page at once.
func ResourceListKey(version int64, mediaType string, page, size int) string {
	if mediaType == "" {
		mediaType = "all"
	}
	return fmt.Sprintf("resources:list:v%d:%s:%d:%d", version, mediaType, page, size)
}

// Noop is the cache used when no Redis address is configured.
type Noop struct{}

func (Noop) Enabled() bool { return false }
func (Noop) GetJSON(context.Context, string, any) (bool, error) {
	return false, nil
}
func (Noop) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error                   { return nil }
func (Noop) Incr(context.Context, string) (int64, error)               { return 0, ErrDisabled }
func (Noop) SetNX(context.Context, string, int64) (bool, error)        { return false, ErrDisabled }
func (Noop) GetInt(context.Context, string) (int64, bool, error)       { return 0, false, nil }
func (Noop) Keys(context.Context, string) ([]string, error)            { return nil, nil }
func (Noop) Ping(context.Context) error                                { return nil }
func (Noop) Close() error                                              { return nil }
