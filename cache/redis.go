// redis.go - Redis implementation of Cache

package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"go-blog-backend/metrics"
)

type Redis struct {
	client  *redis.Client
	metrics *metrics.Metrics
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, db int, m *metrics.Metrics) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &Redis{client: client, metrics: m}, nil
}

func (r *Redis) Enabled() bool { return true }

func (r *Redis) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.metrics.CacheResult("miss")
		return false, nil
	}
	if err != nil {
		r.metrics.CacheResult("error")
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.metrics.CacheResult("error")
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	r.metrics.CacheResult("hit")
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	return r.client.Incr(ctx, key).Result()
}

// SetNX seeds a counter if it does not exist yet.
func (r *Redis) SetNX(ctx context.Context, key string, value int64) (bool, error) {
	return r.client.SetNX(ctx, key, value, 0).Result()
}

func (r *Redis) GetInt(ctx context.Context, key string) (int64, bool, error) {
	s, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("cache key %s is not a counter: %w", key, err)
	}
	return n, true, nil
}

// Keys walks the keyspace with SCAN rather than blocking on KEYS.
func (r *Redis) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}
	return keys, nil
}

func (r *Redis) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

func (r *Redis) Close() error { return r.client.Close() }
