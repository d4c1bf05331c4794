package bootstrap

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	"github.com/railzwaylabs/phonebill/internal/config"
	"github.com/railzwaylabs/phonebill/internal/migration"
	"github.com/railzwaylabs/phonebill/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	return conn
}

func sqliteConfig() config.Config {
	var cfg config.Config
	cfg.Database.Driver = db.DriverSQLite
	return cfg
}

func TestSchemaGateRequiresTable(t *testing.T) {
	conn := newTestDB(t)
	gate, err := NewSchemaGate(conn, sqliteConfig())
	require.NoError(t, err)

	require.ErrorIs(t, gate.MustBeActive(context.Background()), ErrSchemaNotMigrated)

	require.NoError(t, conn.AutoMigrate(&callrecorddomain.CallRecord{}))
	require.NoError(t, gate.MustBeActive(context.Background()))
}

func TestNewSchemaGateRequiresDB(t *testing.T) {
	_, err := NewSchemaGate(nil, sqliteConfig())
	require.Error(t, err)
}

func TestEnforceSchemaGateFailsStart(t *testing.T) {
	gate, err := NewSchemaGate(newTestDB(t), sqliteConfig())
	require.NoError(t, err)

	lc := fxtest.NewLifecycle(t)
	EnforceSchemaGate(lc, gate, zap.NewNop())
	require.ErrorIs(t, lc.Start(context.Background()), ErrSchemaNotMigrated)
}

func newPostgresMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return conn, mock
}

func expectTable(mock sqlmock.Sqlmock, exists bool) {
	count := 0
	if exists {
		count = 1
	}
	mock.ExpectQuery(`information_schema\.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

func expectSchemaVersion(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT version, dirty FROM "schema_migrations"`)).WillReturnRows(rows)
}

func TestSchemaGatePostgres(t *testing.T) {
	var cfg config.Config
	cfg.Database.Driver = db.DriverPostgres

	latest, err := migration.LatestMigrationVersion(db.DriverPostgres)
	require.NoError(t, err)

	tests := []struct {
		name    string
		expect  func(sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "up to date",
			expect: func(m sqlmock.Sqlmock) {
				expectTable(m, true)
				expectSchemaVersion(m, sqlmock.NewRows([]string{"version", "dirty"}).AddRow(int64(latest), false))
			},
		},
		{
			name:    "missing table",
			expect:  func(m sqlmock.Sqlmock) { expectTable(m, false) },
			wantErr: ErrSchemaNotMigrated,
		},
		{
			name: "no applied migrations",
			expect: func(m sqlmock.Sqlmock) {
				expectTable(m, true)
				expectSchemaVersion(m, sqlmock.NewRows([]string{"version", "dirty"}))
			},
			wantErr: ErrSchemaNotMigrated,
		},
		{
			name: "dirty",
			expect: func(m sqlmock.Sqlmock) {
				expectTable(m, true)
				expectSchemaVersion(m, sqlmock.NewRows([]string{"version", "dirty"}).AddRow(int64(latest), true))
			},
			wantErr: ErrSchemaDirty,
		},
		{
			name: "behind",
			expect: func(m sqlmock.Sqlmock) {
				expectTable(m, true)
				expectSchemaVersion(m, sqlmock.NewRows([]string{"version", "dirty"}).AddRow(int64(latest)+1, false))
			},
			wantErr: ErrSchemaVersionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock := newPostgresMock(t)
			tt.expect(mock)

			gate, err := NewSchemaGate(conn, cfg)
			require.NoError(t, err)

			err = gate.MustBeActive(context.Background())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
