// Package redis provides Redis caching for host state and prediction
// responses.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vmplace/vmplace/internal/config"
	"github.com/vmplace/vmplace/internal/domain"
	"github.com/vmplace/vmplace/internal/services/inference"
	placementsvc "github.com/vmplace/vmplace/internal/services/placement"
)

// ErrCacheMiss indicates the key was not found in cache.
var ErrCacheMiss = errors.New("cache miss")

// Ensure Cache satisfies the service cache interfaces.
var (
	_ placementsvc.Cache = (*Cache)(nil)
	_ inference.Cache    = (*Cache)(nil)
)

// Cache wraps a Redis client for caching operations.
type Cache struct {
	client        *redis.Client
	logger        *zap.Logger
	predictionTTL time.Duration
}

// NewCache creates a new Redis cache connection.
func NewCache(cfg config.RedisConfig, predictionTTL time.Duration, logger *zap.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.Address()))

	return &Cache{client: client, logger: logger, predictionTTL: predictionTTL}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Health checks if Redis is reachable.
func (c *Cache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// =============================================================================
// Generic Cache Operations
// =============================================================================

// Get retrieves a value from cache and unmarshals it into dest.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get error: %w", err)
	}

	return json.Unmarshal([]byte(val), dest)
}

// Set stores a value in cache with a TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes a key from cache.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// DeletePattern removes all keys matching a pattern.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("Failed to delete key", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	return iter.Err()
}

// =============================================================================
// Host Cache Operations
// =============================================================================

const hostsKey = "hosts:current"
const hostsTTL = 5 * time.Minute

// GetHosts retrieves the cached host set.
func (c *Cache) GetHosts(ctx context.Context) ([]domain.Host, error) {
	var hosts []domain.Host
	if err := c.Get(ctx, hostsKey, &hosts); err != nil {
		return nil, err
	}
	return hosts, nil
}

// SetHosts caches the current host set.
func (c *Cache) SetHosts(ctx context.Context, hosts []domain.Host) error {
	return c.Set(ctx, hostsKey, hosts, hostsTTL)
}

// InvalidateHosts drops the cached host set after a placement run.
func (c *Cache) InvalidateHosts(ctx context.Context) error {
	return c.Delete(ctx, hostsKey)
}

// =============================================================================
// Prediction Cache Operations
// =============================================================================

// GetPrediction retrieves a cached prediction response.
func (c *Cache) GetPrediction(ctx context.Context, key string) (*inference.Prediction, error) {
	var p inference.Prediction
	if err := c.Get(ctx, key, &p); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, inference.ErrCacheMiss
		}
		return nil, err
	}
	return &p, nil
}

// SetPrediction caches a prediction response.
func (c *Cache) SetPrediction(ctx context.Context, key string, p *inference.Prediction) error {
	return c.Set(ctx, key, p, c.predictionTTL)
}
