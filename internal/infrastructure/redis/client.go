package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lumichat/otp-api/internal/config"
)

// NewClient connects to the configured Redis and verifies it with a ping.
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
