package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elorajewelry/checkout-service/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    ref_id         TEXT PRIMARY KEY,
    transaction_id TEXT NOT NULL UNIQUE,
    full_name      TEXT NOT NULL,
    email          TEXT NOT NULL,
    phone          TEXT NOT NULL DEFAULT '',
    shipping       TEXT NOT NULL,
    pickup         JSONB,
    address        JSONB,
    items          JSONB NOT NULL DEFAULT '[]',
    total_halers   BIGINT NOT NULL,
    paid           BOOLEAN NOT NULL DEFAULT FALSE,
    created_at     TIMESTAMPTZ NOT NULL
);
`

// Connect opens the pool, verifies connectivity and ensures the
// orders table exists.
func Connect(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	pgxCfg, err := cfg.PgxConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	logger.Info("connected to database", "host", cfg.Host, "name", cfg.Name)
	return pool, nil
}
