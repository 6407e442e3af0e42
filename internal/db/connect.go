package db

import (
	"context"
	"time"

	"taskmaster/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Options bound the connection pool.
type Options struct {
	MinConns int32
	MaxConns int32
}

// Connect builds the pool, runs a warm-up query and exits the process on failure.
func Connect(dsn string, opts Options) *pgxpool.Pool {
	pool, err := NewPool(context.Background(), dsn, opts)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}
	logger.Info("database connected", "min_conns", opts.MinConns, "max_conns", opts.MaxConns)
	return pool
}

func NewPool(ctx context.Context, dsn string, opts Options) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns >= 0 && opts.MinConns <= cfg.MaxConns {
		cfg.MinConns = opts.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var one int
	if err := pool.QueryRow(pingCtx, `SELECT 1`).Scan(&one); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
