// Package pgxgraph is the optional Postgres-backed GraphRepository
// (§4.1 "remote graph database" case): jackc/pgx/v5 pooled connections,
// Masterminds/squirrel for query building, golang-migrate/migrate/v4 for
// the two-table schema. Grounded on the teacher's
// common/mpostgres.PostgresConnection connect-once-and-reuse shape,
// adapted from database/sql to a native pgxpool.Pool.
package pgxgraph

import (
	"context"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/lerian-kg/kgarbiter/pkg/mlog"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Connection is a hub which deals with a pooled Postgres connection,
// mirroring the teacher's PostgresConnection singleton-on-first-use shape.
type Connection struct {
	DSN       string
	Pool      *pgxpool.Pool
	Logger    mlog.Logger
	Connected bool
}

// Connect opens the pool and pings it once.
func (c *Connection) Connect(ctx context.Context) error {
	if c.Logger == nil {
		c.Logger = mlog.NopLogger{}
	}

	c.Logger.Info("connecting to postgres graph repository")

	pool, err := pgxpool.New(ctx, c.DSN)
	if err != nil {
		return fmt.Errorf("pgxgraph: open pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pgxgraph: ping: %w", err)
	}

	c.Pool = pool
	c.Connected = true

	return nil
}

// GetPool returns the pool, connecting lazily if needed.
func (c *Connection) GetPool(ctx context.Context) (*pgxpool.Pool, error) {
	if c.Pool == nil {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	return c.Pool, nil
}

// Migrate applies every embedded migration up to the latest version
// (§4.1 "the two-table schema kg_entities, kg_relations"), borrowing a
// database/sql handle from the pool since golang-migrate's pgx driver
// speaks database/sql rather than pgxpool directly.
func Migrate(pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("pgxgraph: migration source: %w", err)
	}

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("pgxgraph: migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("pgxgraph: migrate init: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("pgxgraph: migrate up: %w", err)
	}

	return nil
}
