package redis

import (
	"context"
	"fmt"
	"time"

	"dao-governance/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// pingTimeout bounds the startup connectivity probe so a wedged Redis
// fails the boot instead of hanging it.
const pingTimeout = 5 * time.Second

// NewClient creates a Redis client and verifies connectivity before the
// engine starts serving. Nonce replay protection and rate limiting ride
// on this connection.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Msg("Redis connection established")

	return client, nil
}
