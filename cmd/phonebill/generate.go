package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/railzwaylabs/phonebill/internal/callrecord/csvsource"
	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	invoicedomain "github.com/railzwaylabs/phonebill/internal/invoice/domain"
	"github.com/spf13/cobra"
)

type generateFlags struct {
	origin  string
	friends []string
	count   int
	from    string
	to      string
	seed    uint64
	out     string
}

func newGenerateCmd() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic calls CSV for demos and load tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(flags, time.Now().UTC(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&flags.origin, "origin", "", "phone number placing the calls")
	cmd.Flags().StringSliceVar(&flags.friends, "friends", nil, "friend numbers to call, comma separated")
	cmd.Flags().IntVar(&flags.count, "count", 100, "number of calls")
	cmd.Flags().StringVar(&flags.from, "from", "", "earliest call (YYYY-MM-DD or RFC3339), defaults to the start of the current month")
	cmd.Flags().StringVar(&flags.to, "to", "", "latest call (YYYY-MM-DD or RFC3339), defaults to now")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "random seed, 0 for a random one")
	cmd.Flags().StringVar(&flags.out, "out", "", "write the CSV to this file instead of stdout")
	_ = cmd.MarkFlagRequired("origin")
	return cmd
}

func runGenerate(flags generateFlags, now time.Time, stdout io.Writer) error {
	from, to := invoicedomain.CurrentPeriod(now)
	if flags.from != "" {
		t, err := callrecorddomain.ParseTimestamp(flags.from)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		from = t
	}
	if flags.to != "" {
		t, err := callrecorddomain.ParseTimestamp(flags.to)
		if err != nil {
			return fmt.Errorf("--to: %w", err)
		}
		to = t
	}

	friends := make([]string, 0, len(flags.friends))
	for _, f := range flags.friends {
		if f = strings.TrimSpace(f); f != "" {
			friends = append(friends, f)
		}
	}

	records, err := csvsource.Generate(csvsource.GenerateOptions{
		Origin:  flags.origin,
		Friends: friends,
		Count:   flags.count,
		From:    from,
		To:      to,
		Seed:    flags.seed,
	})
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
	return csvsource.Write(out, records)
}
