package postgres

import (
	"context"
	"fmt"

	"github.com/DevAthul-88/Sonnet-AI/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB holds the pgx pool shared by the chat, message, and user repositories
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB opens a connection pool and verifies it is reachable before handing
// it out, so startup fails fast instead of on the first query.
func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping verifies database connectivity, used by the readiness endpoint
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
