package bootstrap

import (
	"context"
	"errors"
	"fmt"

	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	"github.com/railzwaylabs/phonebill/internal/config"
	"github.com/railzwaylabs/phonebill/internal/migration"
	"github.com/railzwaylabs/phonebill/pkg/db"
	"gorm.io/gorm"
)

var (
	ErrSchemaNotMigrated     = errors.New("schema not migrated")
	ErrSchemaVersionMismatch = errors.New("schema version mismatch")
	ErrSchemaDirty           = errors.New("schema migration is dirty")
)

// schemaMigrationsTable is where golang-migrate records the applied version.
const schemaMigrationsTable = "schema_migrations"

type SchemaGate interface {
	MustBeActive(ctx context.Context) error
}

type schemaGate struct {
	db              *gorm.DB
	driver          string
	expectedVersion uint
}

func NewSchemaGate(conn *gorm.DB, cfg config.Config) (SchemaGate, error) {
	if conn == nil {
		return nil, errors.New("schema gate requires database handle")
	}

	g := &schemaGate{db: conn, driver: cfg.Database.Driver}
	if g.driver == db.DriverSQLite {
		return g, nil
	}

	latestVersion, err := migration.LatestMigrationVersion(g.driver)
	if err != nil {
		return nil, err
	}
	g.expectedVersion = latestVersion
	return g, nil
}

func (g *schemaGate) MustBeActive(ctx context.Context) error {
	migrator := g.db.WithContext(ctx).Migrator()
	if !migrator.HasTable(&callrecorddomain.CallRecord{}) {
		return fmt.Errorf("%w: table call_records is missing, run phonebill migrate", ErrSchemaNotMigrated)
	}
	if g.driver == db.DriverSQLite {
		return nil
	}

	var state struct {
		Version uint `gorm:"column:version"`
		Dirty   bool `gorm:"column:dirty"`
	}
	result := g.db.WithContext(ctx).Table(schemaMigrationsTable).Select("version, dirty").Limit(1).Scan(&state)
	if result.Error != nil {
		return fmt.Errorf("read schema version: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: no applied migrations", ErrSchemaNotMigrated)
	}
	if state.Dirty {
		return fmt.Errorf("%w: version=%d", ErrSchemaDirty, state.Version)
	}
	if state.Version != g.expectedVersion {
		return fmt.Errorf("%w: state=%d expected=%d", ErrSchemaVersionMismatch, state.Version, g.expectedVersion)
	}
	return nil
}
