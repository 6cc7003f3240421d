package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/config"
)

// NewRedisClient connects the client behind token sessions, the dashboard
// cache, the audit queue and live events.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opt.ClientName = applicationName

	rdb := redis.NewClient(opt)

	ping := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	if err := pingWithRetry(ctx, log, "redis", ping); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Msg("Redis connected")

	return rdb, nil
}
