// Package storage opens the charity store selected by DATABASE_URL.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"qrkot/internal/adapter/repo"
	"qrkot/internal/adapter/sqlite"
	"qrkot/internal/domain"
	"qrkot/internal/infra"
	"qrkot/internal/migrations"
)

// Backend is an opened store together with the handles needed to close and
// migrate it.
type Backend struct {
	Store  domain.Store
	Driver string

	databaseURL string
	pool        *pgxpool.Pool
	sqlite      *sqlite.Store
}

// Open connects to the configured database. SQLite schemas are migrated on
// open; Postgres schemas are migrated only when migrate is true.
func Open(ctx context.Context, cfg *infra.Config, logger zerolog.Logger, migrate bool) (*Backend, error) {
	if cfg == nil {
		return nil, errors.New("storage: config is required")
	}
	b := &Backend{Driver: cfg.DatabaseDriver(), databaseURL: cfg.DatabaseURL}

	switch b.Driver {
	case infra.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath())
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		b.sqlite = store
		b.Store = store
	case infra.DriverPostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		b.pool = pool
		b.Store = repo.NewStore(infra.NewSQLRunner(pool, logger))
		if migrate {
			applied, err := b.Migrate(ctx)
			if err != nil {
				pool.Close()
				return nil, err
			}
			logger.Info().Int("applied", applied).Msg("postgres migrations complete")
		}
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", b.Driver)
	}
	return b, nil
}

// Migrate applies pending migrations and returns how many ran.
func (b *Backend) Migrate(ctx context.Context) (int, error) {
	var applied int
	err := b.withSQL(func(db *sql.DB, driver string) error {
		n, err := migrations.Up(ctx, db, driver)
		applied = n
		return err
	})
	return applied, err
}

// SchemaVersion reports the applied migration version.
func (b *Backend) SchemaVersion(ctx context.Context) (int64, error) {
	var version int64
	err := b.withSQL(func(db *sql.DB, driver string) error {
		v, err := migrations.Version(ctx, db, driver)
		version = v
		return err
	})
	return version, err
}

// goose works on database/sql, so Postgres gets a short-lived pgx stdlib handle.
func (b *Backend) withSQL(fn func(db *sql.DB, driver string) error) error {
	if b.sqlite != nil {
		return fn(b.sqlite.DB(), migrations.SQLite)
	}
	db, err := sql.Open("pgx", b.databaseURL)
	if err != nil {
		return fmt.Errorf("storage: open migration handle: %w", err)
	}
	defer db.Close()
	return fn(db, migrations.Postgres)
}

// Close releases the underlying connections.
func (b *Backend) Close() error {
	if b == nil {
		return nil
	}
	if b.pool != nil {
		b.pool.Close()
	}
	if b.sqlite != nil {
		return b.sqlite.Close()
	}
	return nil
}
