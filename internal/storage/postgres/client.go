// Package postgres implements the opportunity store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fd1az/dex-monitor/internal/apperror"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ClientConfig holds connection parameters for the PostgreSQL client.
type ClientConfig struct {
	DSN      string
	MaxConns int
	MinConns int
}

// Client wraps a pgxpool.Pool and manages schema migrations.
type Client struct {
	pool *pgxpool.Pool
}

// Connect opens a connection pool, verifies it with a ping, and returns a
// Client owning the pool.
func Connect(ctx context.Context, cfg ClientConfig) (*Client, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err),
			apperror.WithContext("invalid database dsn"))
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorageError, "connect")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperror.Wrap(err, apperror.CodeStorageError, "ping")
	}

	return &Client{pool: pool}, nil
}

// Pool returns the underlying connection pool.
func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

// Close shuts down the connection pool.
func (c *Client) Close() {
	c.pool.Close()
}

// RunMigrations applies the embedded SQL migrations in lexicographic order,
// tracking applied files in a schema_migrations table so reruns are safe.
func (c *Client) RunMigrations(ctx context.Context) error {
	const createTracker = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`
	if _, err := c.pool.Exec(ctx, createTracker); err != nil {
		return apperror.Wrap(err, apperror.CodeMigrationFailed, "create schema_migrations")
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return apperror.Wrap(err, apperror.CodeMigrationFailed, "read migrations dir")
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var exists bool
		err := c.pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)",
			entry.Name(),
		).Scan(&exists)
		if err != nil {
			return apperror.Wrap(err, apperror.CodeMigrationFailed, entry.Name())
		}
		if exists {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return apperror.Wrap(err, apperror.CodeMigrationFailed, entry.Name())
		}

		tx, err := c.pool.Begin(ctx)
		if err != nil {
			return apperror.Wrap(err, apperror.CodeMigrationFailed, entry.Name())
		}

		if _, err := tx.Exec(ctx, string(data)); err != nil {
			_ = tx.Rollback(ctx)
			return apperror.Wrap(err, apperror.CodeMigrationFailed, entry.Name())
		}

		if _, err := tx.Exec(ctx,
			"INSERT INTO schema_migrations (filename) VALUES ($1)",
			entry.Name(),
		); err != nil {
			_ = tx.Rollback(ctx)
			return apperror.Wrap(err, apperror.CodeMigrationFailed, entry.Name())
		}

		if err := tx.Commit(ctx); err != nil {
			return apperror.Wrap(err, apperror.CodeMigrationFailed, entry.Name())
		}
	}

	return nil
}
