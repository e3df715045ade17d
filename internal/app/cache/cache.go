// Package cache implements the transcription result cache on redis.
// Identical uploads with identical options resolve to the same key, so
// a hit skips decoding and inference entirely.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ramble/internal/app/metrics"
	"ramble/internal/app/transcription"
)

// DefaultTTL bounds how long cached results live.
const DefaultTTL = 24 * time.Hour

// Ensure RedisCache implements the pipeline cache contract
var _ transcription.ResultCache = (*RedisCache)(nil)

// Config holds redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache stores assembled transcripts as JSON.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache connects to redis and verifies the connection before
// returning.
func NewRedisCache(cfg Config, logger *zap.Logger) (*RedisCache, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{rdb: rdb, ttl: cfg.TTL, logger: logger}, nil
}

// Get returns the cached transcript, or (nil, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*transcription.Transcript, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheEvent("miss")
		return nil, nil
	}
	if err != nil {
		metrics.RecordCacheEvent("error")
		return nil, fmt.Errorf("cache read failed: %w", err)
	}

	var tr transcription.Transcript
	if err := json.Unmarshal(raw, &tr); err != nil {
		metrics.RecordCacheEvent("error")
		return nil, fmt.Errorf("cache entry corrupt: %w", err)
	}
	metrics.RecordCacheEvent("hit")
	return &tr, nil
}

// Set stores the transcript under key for the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, tr *transcription.Transcript) error {
	data, err := json.Marshal(tr)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		metrics.RecordCacheEvent("error")
		return fmt.Errorf("cache write failed: %w", err)
	}
	metrics.RecordCacheEvent("store")
	return nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
