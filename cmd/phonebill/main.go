package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/phonebill/internal/bootstrap"
	"github.com/railzwaylabs/phonebill/internal/callrecord"
	"github.com/railzwaylabs/phonebill/internal/clock"
	"github.com/railzwaylabs/phonebill/internal/config"
	"github.com/railzwaylabs/phonebill/internal/invoice"
	"github.com/railzwaylabs/phonebill/internal/migration"
	"github.com/railzwaylabs/phonebill/internal/observability"
	"github.com/railzwaylabs/phonebill/internal/rating"
	"github.com/railzwaylabs/phonebill/internal/redis"
	"github.com/railzwaylabs/phonebill/internal/server"
	"github.com/railzwaylabs/phonebill/internal/subscriber"
	"github.com/railzwaylabs/phonebill/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "phonebill",
		Short:         "Phone invoice rating service",
		Version:       readVersionFromEnv(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newImportCmd(), newInvoiceCmd(), newGenerateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the invoice HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts := append(invoiceOptions(cfg), server.Module)
			if cfg.CallRecords.Source == config.CallRecordsSourceDatabase {
				opts = append(opts, bootstrap.Module)
			}
			app := fx.New(opts...)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.WithLogger(fxLogger),
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

// baseOptions wires logging, ids and, when call records live in the
// database, the gorm connection.
func baseOptions(cfg config.Config, withDB bool) []fx.Option {
	opts := []fx.Option{
		fx.Supply(cfg),
		observability.Module,
		fx.WithLogger(fxLogger),
		fx.Provide(registerSnowflake),
		clock.Module,
	}
	if withDB {
		opts = append(opts, db.Module)
	}
	return opts
}

func invoiceOptions(cfg config.Config) []fx.Option {
	return append(baseOptions(cfg, cfg.CallRecords.Source == config.CallRecordsSourceDatabase),
		redis.Module,
		subscriber.Module,
		callrecord.Module,
		rating.Module,
		invoice.Module,
	)
}

func registerSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.App.SnowflakeNode)
}

func fxLogger(log *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: log.Named("fx").WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
