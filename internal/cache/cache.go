/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-backed store for AI announcement copy with
// graceful fallback when Redis is unreachable.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/friendsincode/bragi_bingo/internal/announce"
)

const (
	keyAIAnnouncements = "bragi:cache:ai_announcements"

	// DefaultAITTL bounds staleness of generated announcement copy.
	DefaultAITTL = 10 * time.Minute
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AITTL time.Duration

	// DisableOnError trips the circuit breaker after the first Redis error.
	DisableOnError bool
}

// Cache stores AI announcements in Redis. A nil or disabled cache behaves
// like an always-miss cache.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool
}

// New creates a cache. When Redis is unreachable the cache starts disabled
// instead of failing startup.
func New(cfg Config, logger zerolog.Logger) *Cache {
	if cfg.AITTL <= 0 {
		cfg.AITTL = DefaultAITTL
	}
	componentLogger := logger.With().Str("component", "cache").Logger()

	if cfg.RedisAddr == "" {
		return &Cache{logger: componentLogger, config: cfg, disabled: true}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     4,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		componentLogger.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		return &Cache{logger: componentLogger, config: cfg, disabled: true}
	}

	componentLogger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")
	return &Cache{client: client, logger: componentLogger, config: cfg}
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAvailable returns true if the cache is operational.
func (c *Cache) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

func (c *Cache) handleError(err error, operation string) {
	if err == nil || err == redis.Nil {
		return
	}

	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling cache due to Redis error")
	}
}

// GetAIAnnouncements returns the cached AI announcement map, if present.
func (c *Cache) GetAIAnnouncements(ctx context.Context) (announce.AIAnnouncements, bool) {
	if c == nil || !c.IsAvailable() {
		return nil, false
	}

	data, err := c.client.Get(ctx, keyAIAnnouncements).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.handleError(err, "get")
		return nil, false
	}

	var ai announce.AIAnnouncements
	if err := json.Unmarshal(data, &ai); err != nil {
		c.logger.Debug().Err(err).Msg("failed to unmarshal cached ai announcements")
		return nil, false
	}
	return ai, true
}

// SetAIAnnouncements stores the AI announcement map with the configured TTL.
func (c *Cache) SetAIAnnouncements(ctx context.Context, ai announce.AIAnnouncements) {
	if c == nil || !c.IsAvailable() {
		return
	}

	data, err := json.Marshal(ai)
	if err != nil {
		c.logger.Debug().Err(err).Msg("failed to marshal ai announcements")
		return
	}
	if err := c.client.Set(ctx, keyAIAnnouncements, data, c.config.AITTL).Err(); err != nil {
		c.handleError(err, "set")
	}
}
