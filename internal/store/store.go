// Package store is the boundary to the relational store. It owns the pgx
// connection pool and exposes the three things the pipeline needs from
// Postgres: the schema snapshot, read-only query execution, and cheap
// validity probes via EXPLAIN.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	sgerrors "sqlsage/cli/internal/errors"
)

// Store wraps a pgx pool. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// PoolConfig bounds the connection pool.
type PoolConfig struct {
	MinConns int32
	MaxConns int32
}

// Connect parses the DSN, applies the pool bounds and verifies connectivity
// with a ping before returning.
func Connect(ctx context.Context, dsn string, pc PoolConfig) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, sgerrors.Wrap(sgerrors.StoreUnreachable, "parse connection string", err)
	}
	if pc.MinConns > 0 {
		cfg.MinConns = pc.MinConns
	}
	if pc.MaxConns > 0 {
		cfg.MaxConns = pc.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, sgerrors.Wrap(sgerrors.StoreUnreachable, "create connection pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, sgerrors.Wrap(sgerrors.StoreUnreachable, "database unreachable", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool wraps an existing pool, mainly for tests.
func NewWithPool(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

// Close releases all pooled connections.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// RunQuery executes sql and materializes every row as a column→value map.
// Column order is preserved separately since Go maps do not keep it.
func (s *Store) RunQuery(ctx context.Context, sql string) ([]string, []map[string]any, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, sgerrors.Wrap(sgerrors.StoreUnreachable, "acquire connection", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = string(fd.Name)
	}

	var out []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return columns, out, nil
}

// Explain asks the planner to check sql without executing it. A nil return
// means the store accepted the plan.
func (s *Store) Explain(ctx context.Context, sql string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return sgerrors.Wrap(sgerrors.StoreUnreachable, "acquire connection", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, "EXPLAIN "+sql)
	if err != nil {
		return err
	}
	rows.Close()
	return rows.Err()
}

// DistinctValues returns up to limit distinct non-null values of one column,
// as strings. Identifiers come from the schema snapshot, not user input, so
// they are interpolated directly.
func (s *Store) DistinctValues(ctx context.Context, table, column string, limit int) ([]string, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, sgerrors.Wrap(sgerrors.StoreUnreachable, "acquire connection", err)
	}
	defer conn.Release()

	q := fmt.Sprintf(
		"SELECT DISTINCT %s::text FROM %s WHERE %s IS NOT NULL ORDER BY 1 LIMIT %d",
		column, table, column, limit)

	rows, err := conn.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
