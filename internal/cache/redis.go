// Package cache provides a Redis-backed JSON cache for catalog responses.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/justestif/go-moodflix/internal/logging"
)

const (
	// DefaultTTL is how long cached entries live when Config.TTL is zero.
	DefaultTTL = 30 * time.Minute

	pingTimeout = 5 * time.Second
)

// ErrDisabled is returned by New when no address is configured.
var ErrDisabled = errors.New("cache disabled: no redis address configured")

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// Redis caches JSON values with a fixed TTL. A nil *Redis is a valid,
// always-missing cache.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, ErrDisabled
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}
	return NewFromClient(client, cfg.TTL, cfg.Prefix), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client, ttl time.Duration, prefix string) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl, prefix: prefix}
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}

// GetJSON decodes the value at key into dest. It reports false on a miss.
func (r *Redis) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if r == nil {
		return false, nil
	}
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes value and stores it under key with the cache TTL.
func (r *Redis) SetJSON(ctx context.Context, key string, value any) error {
	if r == nil {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.prefix+key, b, r.ttl).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Get returns a raw cached body. Errors count as misses.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	if r == nil {
		return nil, false
	}
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == nil {
		return val, true
	}
	if !errors.Is(err, redis.Nil) {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	return nil, false
}

// Set stores a raw body. Write failures are logged and dropped.
func (r *Redis) Set(ctx context.Context, key string, body []byte) {
	if r == nil {
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, body, r.ttl).Err(); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
