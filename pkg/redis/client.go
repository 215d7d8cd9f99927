// Package redis wraps go-redis with logging, operation timing, and the JSON
// helpers the preference store uses.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"

	"github.com/cloverhq/clover/pkg/metrics"
)

// Nil is the sentinel returned when a key does not exist.
const Nil = redis.Nil

// Config holds Redis connection configuration
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Client wraps the Redis client with logging and common operations
type Client struct {
	rdb    *redis.Client
	logger ectologger.Logger
}

// NewClient creates a new Redis client and verifies connectivity.
func NewClient(cfg Config, logger ectologger.Logger) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logger.Infof("Connected to Redis at %s", addr)

	return &Client{
		rdb:    rdb,
		logger: logger,
	}, nil
}

// NewClientFromRedis wraps an existing go-redis client; used by tests.
func NewClientFromRedis(rdb *redis.Client, logger ectologger.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks if Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func timed(operation string) func() {
	start := time.Now()
	return func() {
		metrics.RedisOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// Get retrieves a value by key
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	defer timed("get")()
	return c.rdb.Get(ctx, key).Result()
}

// Set sets a value with optional expiration
func (c *Client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	defer timed("set")()
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Del deletes one or more keys
func (c *Client) Del(ctx context.Context, keys ...string) error {
	defer timed("del")()
	return c.rdb.Del(ctx, keys...).Err()
}

// Exists checks if a key exists
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	defer timed("exists")()
	result, err := c.rdb.Exists(ctx, key).Result()
	return result > 0, err
}

// GetJSON retrieves a key and decodes it into v. Reports false when the key
// does not exist.
func (c *Client) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, err := c.Get(ctx, key)
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode value at %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key with optional expiration.
func (c *Client) SetJSON(ctx context.Context, key string, v any, expiration time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", key, err)
	}
	return c.Set(ctx, key, payload, expiration)
}
