package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/ivtracker/internal/batch"
	"github.com/wonny/ivtracker/internal/dashboard"
)

// exitEmptyBatch is returned when no ticker produced a row
const exitEmptyBatch = 2

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one batch and print the recommendation table",
	Long: `Fetches quotes and fundamentals for every ticker, estimates the Graham
intrinsic value, attaches a sentiment label and prints the table plus
the STRONG BUY alerts.

Tickers that fail to fetch are skipped. When every ticker fails the
command exits with status 2.

Example:
  go run ./cmd/ivtracker scan
  go run ./cmd/ivtracker scan --tickers TCS.NS,HAL.NS --workers 4
  go run ./cmd/ivtracker scan --provider static`,
	RunE: runScan,
}

var (
	scanTickers  []string
	scanWorkers  int
	scanProvider string
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringSliceVar(&scanTickers, "tickers", nil, "comma separated tickers (default TICKERS or the built-in universe)")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "concurrent fetches, 1 = sequential (default BATCH_WORKERS)")
	scanCmd.Flags().StringVar(&scanProvider, "provider", "", "quote provider: yahoo, financego, static (default QUOTE_PROVIDER)")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, overrides{
		tickers:  cleanTickers(scanTickers),
		workers:  scanWorkers,
		provider: strings.ToLower(scanProvider),
	})
	if err != nil {
		return err
	}
	defer a.Close()

	PrintHeader("Intrinsic Value Scan")
	PrintKV("Provider", a.provider.Name())
	PrintKV("Sentiment", a.estimator.Source())
	PrintKV("Mode", a.runner.Mode())
	PrintSeparator()

	result, cached, err := a.tracker.Recommendations(ctx)
	if err != nil {
		msg := dashboard.EmptyMessage(err)
		if errors.Is(err, batch.ErrEmptyBatchResult) || errors.Is(err, batch.ErrNoSymbols) {
			PrintWarning(msg)
			return &ExitError{Code: exitEmptyBatch}
		}
		PrintFailure(msg)
		return err
	}

	out := cmd.OutOrStdout()
	if err := dashboard.RenderTable(out, result.Rows); err != nil {
		return err
	}
	if err := dashboard.RenderAlerts(out, dashboard.Alerts(result.Rows)); err != nil {
		return err
	}

	PrintSeparator()
	PrintKV("Rows", len(result.Rows))
	if len(result.Skipped) > 0 {
		PrintKV("Skipped", strings.Join(result.Skipped, ", "))
	}
	if cached {
		PrintKV("Source", "cache")
	}
	PrintKV("Generated", result.GeneratedAt.Format("2006-01-02 15:04:05"))

	return nil
}

// cleanTickers trims flag values and drops blanks
func cleanTickers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
