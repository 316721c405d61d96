// Package migration applies the embedded SQL schema with golang-migrate.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/srsports/backend/internal/logging"
)

//go:embed sql/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "sql"

// openDriver は migrate の DB ドライバを作る。ドライバの Close は db も閉じる
var openDriver = func(db *sql.DB) (database.Driver, error) {
	return pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
}

// Source returns the embedded migration files.
func Source() (fs.FS, error) {
	return fs.Sub(embeddedMigrations, migrationsDir)
}

// withMigrator runs fn against a migrator backed by its own *sql.DB view of
// the pool. The migrator and the view are closed before returning, which
// hands the migrator's pinned connection back to the pool.
func withMigrator(pool *pgxpool.Pool, fn func(m *migrate.Migrate) error) error {
	if pool == nil {
		return errors.New("migration database pool is required")
	}
	sub, err := Source()
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	driver, err := openDriver(db)
	if err != nil {
		_ = source.Close()
		_ = db.Close()
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		_ = source.Close()
		_ = driver.Close()
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logging.Warn("failed to close migrator", "source_error", srcErr, "database_error", dbErr)
		}
	}()
	return fn(m)
}

// Up applies every pending migration. No pending migrations is not an error.
func Up(pool *pgxpool.Pool) error {
	return withMigrator(pool, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("apply migrations: %w", err)
		}
		return nil
	})
}

// Down rolls back steps migrations; steps <= 0 rolls back everything.
func Down(pool *pgxpool.Pool, steps int) error {
	return withMigrator(pool, func(m *migrate.Migrate) error {
		var err error
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("rollback migrations: %w", err)
		}
		return nil
	})
}

// Fresh drops every table in the schema and re-applies all migrations.
func Fresh(pool *pgxpool.Pool) error {
	err := withMigrator(pool, func(m *migrate.Migrate) error {
		if err := m.Drop(); err != nil {
			return fmt.Errorf("drop schema: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	// Drop はバージョンテーブルも消すので migrator を作り直す
	return Up(pool)
}

// Version reports the applied version. ok is false when nothing has been applied.
func Version(pool *pgxpool.Pool) (version uint, dirty, ok bool, err error) {
	err = withMigrator(pool, func(m *migrate.Migrate) error {
		var verr error
		version, dirty, verr = m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			return nil
		}
		if verr != nil {
			return verr
		}
		ok = true
		return nil
	})
	if err != nil {
		return 0, false, false, err
	}
	return version, dirty, ok, nil
}
