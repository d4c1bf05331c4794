package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	"github.com/railzwaylabs/phonebill/internal/clock"
	"github.com/railzwaylabs/phonebill/internal/config"
	invoicedomain "github.com/railzwaylabs/phonebill/internal/invoice/domain"
	"github.com/railzwaylabs/phonebill/internal/invoice/render"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const (
	formatJSON = "json"
	formatPDF  = "pdf"
)

type invoiceFlags struct {
	phone  string
	from   string
	to     string
	format string
	out    string
}

func newInvoiceCmd() *cobra.Command {
	var flags invoiceFlags

	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Build the invoice of a phone number and print or save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.format != formatJSON && flags.format != formatPDF {
				return fmt.Errorf("unknown --format %q, expected json or pdf", flags.format)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runInvoice(cmd.Context(), cfg, flags, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&flags.phone, "phone", "", "subscriber phone number, e.g. +5411111111111")
	cmd.Flags().StringVar(&flags.from, "from", "", "period start (YYYY-MM-DD or RFC3339), defaults to the start of the current month")
	cmd.Flags().StringVar(&flags.to, "to", "", "period end (YYYY-MM-DD or RFC3339), defaults to now")
	cmd.Flags().StringVar(&flags.format, "format", formatJSON, "output format: json or pdf")
	cmd.Flags().StringVar(&flags.out, "out", "", "write the invoice to this file instead of stdout")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func runInvoice(ctx context.Context, cfg config.Config, flags invoiceFlags, stdout io.Writer) error {
	var (
		svc      invoicedomain.Service
		renderer *render.Renderer
		clk      clock.Clock
	)
	app := fx.New(append(invoiceOptions(cfg), fx.Populate(&svc, &renderer, &clk))...)
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() { _ = app.Stop(context.Background()) }()

	req, err := invoiceRequest(flags, clk.Now(ctx))
	if err != nil {
		return err
	}
	inv, err := svc.Build(ctx, req)
	if err != nil {
		return err
	}

	var out io.Writer = stdout
	if flags.out != "" {
		f, err := os.Create(flags.out)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return writeInvoice(out, renderer, inv, flags.format)
}

func invoiceRequest(flags invoiceFlags, now time.Time) (invoicedomain.Request, error) {
	from, to := invoicedomain.CurrentPeriod(now)
	if flags.from != "" {
		t, err := callrecorddomain.ParseTimestamp(flags.from)
		if err != nil {
			return invoicedomain.Request{}, fmt.Errorf("--from: %w", err)
		}
		from = t
	}
	if flags.to != "" {
		t, err := callrecorddomain.ParseTimestamp(flags.to)
		if err != nil {
			return invoicedomain.Request{}, fmt.Errorf("--to: %w", err)
		}
		to = t
	}
	return invoicedomain.Request{PhoneNumber: flags.phone, From: from, To: to}, nil
}

func writeInvoice(out io.Writer, renderer *render.Renderer, inv *invoicedomain.Invoice, format string) error {
	if format == formatPDF {
		doc, err := renderer.PDF(inv)
		if err != nil {
			return err
		}
		_, err = out.Write(doc)
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(render.NewView(inv))
}
