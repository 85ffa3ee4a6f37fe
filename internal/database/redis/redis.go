package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"agritrace-backend/internal/config"
)

// Client holds the session-store connection. Sessions are the only
// Redis consumer, so one logical DB is enough.
type Client struct {
	client *goredis.Client
}

// Connect opens the session store and verifies it responds before the
// server starts accepting logins.
func Connect(cfg config.RedisConfig) (*Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	return &Client{client: client}, nil
}

// GetClient exposes the underlying connection for session operations.
func (c *Client) GetClient() *goredis.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}
