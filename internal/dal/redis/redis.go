package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/corray333/backend-labs/orders/internal/config"
	goredis "github.com/redis/go-redis/v9"
)

// Client represents a Redis client.
type Client struct {
	rdb *goredis.Client
}

// Redis returns the underlying go-redis client.
func (c *Client) Redis() *goredis.Client {
	return c.rdb
}

// Close closes the connection pool for graceful shutdown.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// MustNewClient connects to Redis and pings it.
func MustNewClient(cfg config.RedisConfig) *Client {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	slog.Info("Redis connected", "addr", cfg.Addr)

	return &Client{rdb: rdb}
}
