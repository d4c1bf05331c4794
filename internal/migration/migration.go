package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	"github.com/railzwaylabs/phonebill/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunMigrations brings the schema up to date. Postgres and MySQL apply the
// embedded SQL migrations; SQLite is migrated from the gorm models.
func RunMigrations(conn *gorm.DB, driver string, log *zap.Logger) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if driver == db.DriverSQLite {
		if err := conn.WithContext(ctx).AutoMigrate(&callrecorddomain.CallRecord{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("schema migrated", zap.String("driver", driver))
		return nil
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}

	apply := func() error { return applySQLMigrations(sqlDB, driver, log) }
	if driver == db.DriverPostgres {
		return withMigrationLock(ctx, sqlDB, apply)
	}
	return apply()
}

func applySQLMigrations(sqlDB *sql.DB, driver string, log *zap.Logger) error {
	latestVersion, err := LatestMigrationVersion(driver)
	if err != nil {
		return err
	}
	checksum, err := MigrationsChecksum(driver)
	if err != nil {
		return err
	}

	migrator, err := newMigrator(sqlDB, driver)
	if err != nil {
		return err
	}

	if _, err := ensureNotDirty(migrator); err != nil {
		return err
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}

	currentVersion, err := ensureNotDirty(migrator)
	if err != nil {
		return err
	}
	if currentVersion != latestVersion {
		return fmt.Errorf("schema version mismatch after migrate: got %d want %d", currentVersion, latestVersion)
	}

	log.Info("schema migrated",
		zap.String("driver", driver),
		zap.Uint("version", currentVersion),
		zap.String("checksum", checksum),
		zap.Bool("changed", upErr == nil),
	)
	return nil
}

func newMigrator(sqlDB *sql.DB, driver string) (*migrate.Migrate, error) {
	sub, err := fs.Sub(embeddedMigrations, path.Join(migrationsDir, driver))
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	var instance database.Driver
	switch driver {
	case db.DriverPostgres:
		instance, err = postgres.WithInstance(sqlDB, &postgres.Config{})
	case db.DriverMySQL:
		instance, err = mysql.WithInstance(sqlDB, &mysql.Config{})
	default:
		return nil, fmt.Errorf("no sql migrations for driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, driver, instance)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return migrator, nil
}

func ensureNotDirty(migrator *migrate.Migrate) (uint, error) {
	if migrator == nil {
		return 0, errors.New("migrator is required")
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, nil
		}
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("database migrations are dirty at version %d", version)
	}
	return version, nil
}
