package db

import (
	"testing"

	"github.com/railzwaylabs/phonebill/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDialector(t *testing.T) {
	dsns := map[string]string{
		DriverSQLite:   "phonebill.db",
		DriverPostgres: "host=localhost user=phonebill dbname=phonebill sslmode=disable",
		DriverMySQL:    "phonebill:secret@tcp(localhost:3306)/phonebill",
	}
	for driver, dsn := range dsns {
		d, err := Dialector(driver, dsn)
		require.NoError(t, err, driver)
		assert.NotNil(t, d)
	}

	_, err := Dialector("oracle", "dsn")
	require.Error(t, err)
}

func TestOpenSQLite(t *testing.T) {
	var cfg config.Config
	cfg.Database.Driver = DriverSQLite
	cfg.Database.DSN = "file:" + t.Name() + "?mode=memory&cache=shared"
	cfg.Log.Level = "info"

	conn, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)

	var one int
	require.NoError(t, conn.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestNormalizeMySQLDSN(t *testing.T) {
	dsn, err := NormalizeMySQLDSN("phonebill:secret@tcp(localhost:3306)/phonebill")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")

	_, err = NormalizeMySQLDSN("not a dsn")
	require.Error(t, err)
	_, err = Dialector(DriverMySQL, "not a dsn")
	require.Error(t, err)
}

func TestRegisterPluginsDisabled(t *testing.T) {
	var cfg config.Config
	cfg.Database.Driver = DriverSQLite
	cfg.Database.DSN = "file:" + t.Name() + "?mode=memory&cache=shared"

	conn, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, RegisterPlugins(PluginParams{DB: conn, Config: cfg, Log: zap.NewNop()}))
	_, ok := conn.Config.Plugins["otelgorm"]
	assert.False(t, ok)
}
