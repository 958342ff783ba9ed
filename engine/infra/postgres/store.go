package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/masar-hq/masar/pkg/config"
	"github.com/masar-hq/masar/pkg/logger"
)

// DBInterface is the query surface shared by pgxpool.Pool, transactions, and
// test mocks.
type DBInterface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is the concrete PostgreSQL driver backed by pgxpool.Pool. It does not
// leak pgx types through its public API beyond DBInterface.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore initializes the pgx pool from the database config and performs a
// health check.
func NewStore(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("postgres: config is required")
	}
	log := logger.FromContext(ctx)
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnLifetime
	}
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	log.Info("Store initialized", "store_driver", "postgres")
	return &Store{pool: pool}, nil
}

// Pool exposes the underlying connection pool to repositories.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close shuts down the connection pool.
func (s *Store) Close(ctx context.Context) {
	s.pool.Close()
	logger.FromContext(ctx).Info("Postgres store closed")
}
