package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	logLevel string
	verbose  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ivtracker",
	Short: "Intrinsic value tracker for NSE equities",
	Long: `ivtracker estimates Graham intrinsic values for a ticker universe,
combines them with a headline sentiment label and flags STRONG BUY and
SELL / OVERVALUED candidates.

Usage:
  go run ./cmd/ivtracker [command]

Examples:
  go run ./cmd/ivtracker scan
  go run ./cmd/ivtracker scan --tickers TCS.NS,INFY.NS --workers 4
  go run ./cmd/ivtracker api --schedule
  go run ./cmd/ivtracker scheduler run refresh_recommendations
  go run ./cmd/ivtracker test-db`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExitError carries a process exit code out of a command
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d: %s", e.Code, e.Message)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")
}
