package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/config"
)

const applicationName = "facultrack-api"

// NewPostgresPool opens the pool used by every repository. Sessions run in
// UTC so DATE columns and CURRENT_DATE agree with the dates the API accepts.
func NewPostgresPool(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxDBConns
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = time.Minute
	poolCfg.ConnConfig.RuntimeParams["timezone"] = "UTC"
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pingWithRetry(ctx, log, "postgres", pool.Ping); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().
		Int32("max_conns", poolCfg.MaxConns).
		Str("database", poolCfg.ConnConfig.Database).
		Str("host", poolCfg.ConnConfig.Host).
		Msg("PostgreSQL connected")

	return pool, nil
}
