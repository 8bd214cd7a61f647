// Package database provides the Postgres connection pool.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig carries pool sizing from configuration. Zero values keep the pgxpool defaults.
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// PoolOption configures the connection pool.
type PoolOption func(*pgxpool.Config)

// WithAfterConnect sets a callback run on each new connection (e.g. pgvector type registration).
func WithAfterConnect(fn func(context.Context, *pgx.Conn) error) PoolOption {
	return func(c *pgxpool.Config) {
		c.AfterConnect = fn
	}
}

// WithPoolConfig applies sizing limits.
func WithPoolConfig(pc PoolConfig) PoolOption {
	return func(c *pgxpool.Config) {
		if pc.MaxConns > 0 {
			c.MaxConns = pc.MaxConns
		}

		if pc.MinConns > 0 {
			c.MinConns = pc.MinConns
		}

		if pc.MaxConnLifetime > 0 {
			c.MaxConnLifetime = pc.MaxConnLifetime
		}
	}
}

// NewPostgresPool creates a PostgreSQL connection pool and verifies connectivity.
func NewPostgresPool(ctx context.Context, databaseURL string, opts ...PoolOption) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	for _, opt := range opts {
		opt(config)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("connected to PostgreSQL", "max_conns", config.MaxConns)

	return pool, nil
}
