package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"formstore/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrateSQLite applies the embedded migrations to an open SQLite database.
func MigrateSQLite(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	defer source.Close()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration init error: %w", err)
	}

	migration, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migration init error: %w", err)
	}
	// migration.Close would close db, which the caller still owns.
	return up(migration)
}

// MigratePostgres applies the embedded migrations through the postgres driver.
func MigratePostgres(src Source) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	migration, err := migrate.NewWithSourceInstance("iofs", source, src.DSN)
	if err != nil {
		return fmt.Errorf("migration init error: %w", err)
	}
	defer migration.Close()

	return up(migration)
}

// migrateLogger routes golang-migrate's progress output to zap.
type migrateLogger struct {
	log *zap.SugaredLogger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (l migrateLogger) Verbose() bool {
	return false
}

func up(migration *migrate.Migrate) error {
	migration.Log = migrateLogger{log: logger.L().Named("migrate").Sugar()}

	version, dirty, err := migration.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration version: %w", err)
	}

	if dirty {
		logger.Error("database is dirty, forcing version", nil, zap.Uint("version", version))
		previous := int(version) - 1
		if previous < 1 {
			previous = migratedb.NilVersion
		}
		if err := migration.Force(previous); err != nil {
			return fmt.Errorf("failed to force migration version: %w", err)
		}
	}

	if err := migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("migrations applied")
	return nil
}
