// Package cache implements ports.QuoteCache on Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jsamuelsen/postage-service/internal/domain"
	"github.com/jsamuelsen/postage-service/internal/platform/config"
)

const serviceName = "redis"

// client is the subset of *redis.Client the cache uses.
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisCache stores quotes as JSON under a key prefix.
type RedisCache struct {
	client client
	prefix string
	logger *slog.Logger
	close  func() error
}

// NewRedisCache connects to the Redis server described by cfg.
// The connection is lazy; use Check to probe it.
func NewRedisCache(cfg config.RedisConfig, logger *slog.Logger) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	c := newCache(rdb, cfg.KeyPrefix, logger)
	c.close = rdb.Close

	return c
}

func newCache(c client, prefix string, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}

	return &RedisCache{
		client: c,
		prefix: prefix,
		logger: logger.With(slog.String("component", "quote_cache")),
		close:  func() error { return nil },
	}
}

// Get implements ports.QuoteCache.
func (c *RedisCache) Get(ctx context.Context, key string) (*domain.PostageQuote, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NewNotFoundError("cached quote", key)
		}

		return nil, unavailable(err)
	}

	var quote domain.PostageQuote
	if err := json.Unmarshal(data, &quote); err != nil {
		c.logger.WarnContext(ctx, "dropping undecodable cache entry", slog.String("key", key), slog.Any("error", err))
		_ = c.client.Del(ctx, c.prefix+key).Err()

		return nil, domain.NewNotFoundError("cached quote", key)
	}

	return &quote, nil
}

// Set implements ports.QuoteCache.
func (c *RedisCache) Set(ctx context.Context, key string, quote *domain.PostageQuote, ttl time.Duration) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("encoding quote: %w", err)
	}

	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return unavailable(err)
	}

	return nil
}

// Delete implements ports.QuoteCache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return unavailable(err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (c *RedisCache) Name() string { return serviceName }

// Check implements ports.HealthChecker.
func (c *RedisCache) Check(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.close()
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", domain.NewUnavailableError(serviceName, ""), err)
}
