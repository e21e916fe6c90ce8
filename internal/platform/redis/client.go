// Package redis builds the shared go-redis client for the result cache.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"modsieve/internal/platform/config"
)

// Connect dials Redis from the service configuration and verifies the
// connection with a ping. A configuration without a URL means Redis is not in
// use; Connect then returns (nil, nil) and callers fall back to the in-memory
// cache.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
