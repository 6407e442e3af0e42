package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type connKey struct{}

// WithConn scopes q to the request carried by ctx.
func WithConn(ctx context.Context, q Querier) context.Context {
	return context.WithValue(ctx, connKey{}, q)
}

// From returns the request-scoped querier, or fallback when none was acquired.
func From(ctx context.Context, fallback Querier) Querier {
	if q, ok := ctx.Value(connKey{}).(Querier); ok && q != nil {
		return q
	}
	return fallback
}

// Acquirer hands out one querier per request together with its release func.
type Acquirer interface {
	Acquire(ctx context.Context) (Querier, func(), error)
}

// PoolAcquirer acquires dedicated connections from a pgx pool.
type PoolAcquirer struct {
	Pool *pgxpool.Pool
}

func (a PoolAcquirer) Acquire(ctx context.Context) (Querier, func(), error) {
	conn, err := a.Pool.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	return conn, conn.Release, nil
}
