package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pooladgaran/campane-backend/pkg/config"
	"github.com/pooladgaran/campane-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace = "campane"
	cachePrefix  = "cache"
)

// ErrCacheMiss is returned when a cached key does not exist.
var ErrCacheMiss = errors.New("redis: cache miss")

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client wraps the redis helpers the service needs: a small read-through
// cache surface plus health checks.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// Cache is the minimal surface the feed's campaign resolver cache consumes.
type Cache interface {
	CacheGet(ctx context.Context, scope, id string) (string, error)
	CacheSet(ctx context.Context, scope, id, value string, ttl time.Duration) error
}

// New bootstraps a Redis client with pooling/timeouts and verifies
// connectivity.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "redis connection established")
	}
	return &Client{store: raw, raw: raw}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// Ping verifies the connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// CacheGet fetches a namespaced cache entry, mapping redis.Nil to
// ErrCacheMiss.
func (c *Client) CacheGet(ctx context.Context, scope, id string) (string, error) {
	value, err := c.store.Get(ctx, c.cacheKey(scope, id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return value, err
}

// CacheSet stores a namespaced cache entry with a TTL.
func (c *Client) CacheSet(ctx context.Context, scope, id, value string, ttl time.Duration) error {
	return c.store.Set(ctx, c.cacheKey(scope, id), value, ttl).Err()
}

// CacheDel drops cache entries.
func (c *Client) CacheDel(ctx context.Context, scope string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, c.cacheKey(scope, id))
	}
	return c.store.Del(ctx, keys...).Err()
}

func (c *Client) cacheKey(scope, id string) string {
	return strings.Join([]string{keyNamespace, cachePrefix, scope, id}, ":")
}
