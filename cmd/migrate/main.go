// Command migrate manages the pricing schema.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/erp/pricing/internal/infrastructure/config"
	"github.com/erp/pricing/internal/infrastructure/logger"
	"github.com/erp/pricing/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// sourceDir is where create writes new files; they are embedded at build time
const sourceDir = "internal/infrastructure/migration/sql"

// schemaCommand runs against an open database
type schemaCommand struct {
	args int
	run  func(m *migration.Migrator, args []string, log *zap.Logger) error
}

var schemaCommands = map[string]schemaCommand{
	"up":   {run: func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Up() }},
	"down": {run: func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Down() }},
	"step": {args: 1, run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return m.Steps(n)
	}},
	"goto": {args: 1, run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		v, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.GoTo(uint(v))
	}},
	"force": {args: 1, run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.Force(v)
	}},
	"version": {run: func(m *migration.Migrator, _ []string, log *zap.Logger) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if v == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	}},
}

func main() {
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *logLevel, Format: "console", Output: "stdout", TimeFormat: time.DateTime})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	driver := cfg.Database.Driver
	log = log.With(zap.String("command", args[0]), zap.String("driver", driver))

	switch args[0] {
	case "create":
		if len(args) < 2 {
			log.Fatal("Usage: migrate create <name> [description]")
		}
		var description string
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(filepath.Join(sourceDir, driver), args[1], description, time.Now())
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created", zap.String("up_file", mf.UpPath), zap.String("down_file", mf.DownPath))
		return

	case "list":
		names, err := migration.ListMigrations(driver)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		log.Info("Embedded migrations", zap.Int("count", len(names)))
		for _, name := range names {
			fmt.Println("  -", name)
		}
		return
	}

	cmd, ok := schemaCommands[args[0]]
	if !ok {
		printUsage()
		os.Exit(2)
	}
	if len(args)-1 < cmd.args {
		log.Fatal("Missing argument", zap.Int("expected", cmd.args))
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	m, err := migration.New(db, driver, log)
	if err != nil {
		_ = db.Close()
		log.Fatal("Failed to prepare migrations", zap.Error(err))
	}
	runErr := cmd.run(m, args[1:], log)
	if err := m.Close(); err != nil {
		log.Warn("Closing migrator", zap.Error(err))
	}
	if runErr != nil {
		log.Fatal("Migration failed", zap.Error(runErr))
	}
}

// openDB opens and pings a database/sql handle. The sqlite3 driver is
// registered by the migration package.
func openDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	name := "postgres"
	if cfg.Driver == "sqlite" {
		name = "sqlite3"
	}
	db, err := sql.Open(name, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func printUsage() {
	fmt.Fprint(os.Stderr, `usage: migrate [-log-level level] <command> [args]

commands:
  up                    apply pending migrations
  down                  roll back every migration
  step <n>              apply n migrations, negative n rolls back
  goto <version>        move to version
  version               print the applied version
  force <version>       mark version applied without running it
  create <name> [desc]  write an empty up/down pair for the configured driver
  list                  list embedded migrations

The database is taken from POS_DATABASE_DRIVER, POS_DATABASE_HOST,
POS_DATABASE_PORT, POS_DATABASE_USER, POS_DATABASE_PASSWORD,
POS_DATABASE_DBNAME, POS_DATABASE_SSLMODE and POS_DATABASE_SQLITE_PATH.
`)
}
