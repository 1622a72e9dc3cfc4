// Package migration applies the versioned SQL schema with golang-migrate.
// Scripts for each supported driver are embedded under sql/<driver>.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed sql
var scripts embed.FS

// Migrator moves one database between schema versions
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// Scripts returns the embedded migrations for driver
func Scripts(driver string) (fs.FS, error) {
	if driver != "postgres" && driver != "sqlite" {
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
	return fs.Sub(scripts, "sql/"+driver)
}

func driverInstance(db *sql.DB, driver string) (database.Driver, error) {
	switch driver {
	case "postgres":
		return postgres.WithInstance(db, &postgres.Config{})
	case "sqlite":
		return sqlite3.WithInstance(db, &sqlite3.Config{})
	}
	return nil, fmt.Errorf("unsupported migration driver %q", driver)
}

// New prepares the embedded scripts of driver against db. Closing the
// Migrator closes db.
func New(db *sql.DB, driver string, log *zap.Logger) (*Migrator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	target, err := driverInstance(db, driver)
	if err != nil {
		return nil, err
	}
	dir, err := Scripts(driver)
	if err != nil {
		return nil, err
	}
	source, err := iofs.New(dir, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, driver, target)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return &Migrator{m: m, log: log.With(zap.String("driver", driver))}, nil
}

// run executes op, treating "nothing to do" as success, and logs the
// version reached
func (mg *Migrator) run(op string, fn func() error, fields ...zap.Field) error {
	mg.log.Info("Migration "+op+" started", fields...)
	err := fn()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info("Schema already up to date", zap.String("op", op))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s: %w", op, err)
	}
	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	mg.log.Info("Migration "+op+" finished", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Up applies every pending migration
func (mg *Migrator) Up() error { return mg.run("up", mg.m.Up) }

// Down rolls every migration back
func (mg *Migrator) Down() error { return mg.run("down", mg.m.Down) }

// Steps moves n migrations, up when positive and down when negative
func (mg *Migrator) Steps(n int) error {
	return mg.run("steps", func() error { return mg.m.Steps(n) }, zap.Int("steps", n))
}

// GoTo migrates up or down to version
func (mg *Migrator) GoTo(version uint) error {
	return mg.run("goto", func() error { return mg.m.Migrate(version) }, zap.Uint("target_version", version))
}

// Version reports the applied version; 0 means an empty schema
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read migration version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied without running anything. Use it to
// clear a dirty flag after fixing a failed migration by hand.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("Forcing migration version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

func (mg *Migrator) Close() error {
	return errors.Join(mg.m.Close())
}
