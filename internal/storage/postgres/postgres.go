// Package postgres backs the engine with PostgreSQL: write-behind
// creature snapshots, the durable event journal, and collaborator
// accounts, all sharing one pgx v5 connection pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/horde/internal/config"
)

// connectTimeout bounds pool construction and the initial ping, so a
// down database fails startup fast instead of hanging it.
const connectTimeout = 10 * time.Second

// Pool is the shared connection pool handed to the repositories in
// this package.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the database described by cfg and verifies the
// connection with a ping before returning.
//
// Precondition: cfg must have passed config.Validate.
// Postcondition: Returns a ready Pool or a non-nil error; on error no
// pool resources are left open.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// Health reports whether the database answers a ping within timeout.
// The snapshot and journal writers keep running on failure; this only
// feeds the health loop's logging.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close releases all pool resources.
//
// Postcondition: The pool and every repository built on it are no
// longer usable.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool for repository construction.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
