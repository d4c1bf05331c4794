package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/railzwaylabs/phonebill/internal/callrecord"
	"github.com/railzwaylabs/phonebill/internal/callrecord/service"
	"github.com/railzwaylabs/phonebill/internal/config"
	"github.com/railzwaylabs/phonebill/internal/migration"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newImportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import call detail records from a CSV file into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runImport(cmd.Context(), cfg, file, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path of the calls CSV")
	return cmd
}

func runImport(ctx context.Context, cfg config.Config, file string, out io.Writer) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	var importer *service.Importer
	app := fx.New(append(baseOptions(cfg, true),
		migration.Module,
		callrecord.Module,
		fx.Populate(&importer),
	)...)
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() { _ = app.Stop(context.Background()) }()

	n, err := importer.Import(ctx, f)
	if err != nil {
		return fmt.Errorf("import %s: %w", file, err)
	}
	total, err := importer.Count(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "imported %d call records (%d stored)\n", n, total)
	return err
}
