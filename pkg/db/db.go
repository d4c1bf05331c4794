// Package db opens the gorm connection for the configured driver.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/railzwaylabs/phonebill/internal/config"
	"github.com/railzwaylabs/phonebill/internal/observability"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormprometheus "gorm.io/plugin/prometheus"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

var Module = fx.Module("db",
	fx.Provide(New),
	fx.Invoke(RegisterPlugins),
)

// Dialector returns the gorm dialector for driver.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverMySQL:
		normalized, err := NormalizeMySQLDSN(dsn)
		if err != nil {
			return nil, err
		}
		return mysql.Open(normalized), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NormalizeMySQLDSN forces UTC time parsing so DATETIME columns scan into
// time.Time the same way on every driver.
func NormalizeMySQLDSN(dsn string) (string, error) {
	parsed, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	parsed.ParseTime = true
	parsed.Loc = time.UTC
	return parsed.FormatDSN(), nil
}

func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:  observability.NewGormLogger(log, observability.GormLogLevel(cfg.Log.Level)),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Database.Driver, err)
	}
	return conn, nil
}

func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	conn, err := Open(cfg, log)
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return sqlDB.PingContext(ctx)
		},
		OnStop: func(context.Context) error {
			return sqlDB.Close()
		},
	})
	return conn, nil
}

type PluginParams struct {
	fx.In

	DB             *gorm.DB
	Config         config.Config
	Log            *zap.Logger
	TracerProvider trace.TracerProvider `optional:"true"`
}

// RegisterPlugins attaches query tracing and connection pool metrics.
func RegisterPlugins(p PluginParams) error {
	if p.Config.Tracing.Enabled && p.TracerProvider != nil {
		plugin := otelgorm.NewPlugin(
			otelgorm.WithTracerProvider(p.TracerProvider),
			otelgorm.WithDBName(p.Config.Database.Driver),
			otelgorm.WithoutQueryVariables(),
		)
		if err := p.DB.Use(plugin); err != nil {
			return fmt.Errorf("register tracing plugin: %w", err)
		}
	}

	if p.Config.Database.Metrics {
		plugin := gormprometheus.New(gormprometheus.Config{
			DBName:          p.Config.App.Name,
			RefreshInterval: 15,
			Labels:          map[string]string{"driver": p.Config.Database.Driver},
		})
		if err := p.DB.Use(plugin); err != nil {
			return fmt.Errorf("register metrics plugin: %w", err)
		}
	}

	p.Log.Debug("database plugins registered",
		zap.Bool("tracing", p.Config.Tracing.Enabled),
		zap.Bool("metrics", p.Config.Database.Metrics),
	)
	return nil
}
