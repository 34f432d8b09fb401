package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/ivtracker/internal/universe"
	"github.com/wonny/ivtracker/pkg/config"
	"github.com/wonny/ivtracker/pkg/database"
)

// testDBCmd represents the test-db command
var testDBCmd = &cobra.Command{
	Use:   "test-db",
	Short: "Test the PostgreSQL connection",
	Long: `Tests the database connection used by the database universe source.

This command:
- loads DATABASE_URL from config
- creates the connection pool and pings it
- runs a health check and prints pool statistics
- counts the active tickers in ivtracker.universe

Example:
  go run ./cmd/ivtracker test-db
  go run ./cmd/ivtracker test-db --seed`,
	RunE: runTestDB,
}

var testDBSeed bool

func init() {
	rootCmd.AddCommand(testDBCmd)

	testDBCmd.Flags().BoolVar(&testDBSeed, "seed", false, "create ivtracker.universe and seed it with TICKERS when empty")
}

func runTestDB(cmd *cobra.Command, args []string) error {
	fmt.Println("=== ivtracker Database Connection Test ===")

	fmt.Println("Loading configuration...")
	cfg, err := loadConfig(overrides{})
	if err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("Config loaded (ENV: %s)", cfg.Env))
	fmt.Printf("   Database URL: %s\n\n", maskPassword(cfg.Database.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("Connecting to database...")
	db, err := database.New(ctx, cfg)
	if err != nil {
		PrintFailure(fmt.Sprintf("Failed to connect to database: %v", err))
		return err
	}
	defer db.Close()
	PrintSuccess("Database connection established")

	status, err := db.HealthCheck(ctx)
	if err != nil {
		PrintFailure(fmt.Sprintf("Health check failed: %v", err))
		return err
	}

	PrintSuccess("Health Check Results:")
	fmt.Printf("   Healthy: %v\n", status.Healthy)
	fmt.Printf("   Response Time: %v\n", status.ResponseTime)
	fmt.Printf("   Timestamp: %v\n\n", status.Timestamp.Format(time.RFC3339))

	fmt.Println("📊 Connection Pool Statistics:")
	fmt.Printf("   Max Connections: %d\n", status.Stats.MaxConns)
	fmt.Printf("   Total Connections: %d\n", status.Stats.TotalConns)
	fmt.Printf("   Acquired Connections: %d\n", status.Stats.AcquiredConns)
	fmt.Printf("   Idle Connections: %d\n\n", status.Stats.IdleConns)

	repo := universe.NewRepository(db.Pool)
	if testDBSeed {
		if err := seedUniverse(ctx, repo, cfg); err != nil {
			PrintFailure(err.Error())
			return err
		}
	}

	count, err := repo.Count(ctx)
	if err != nil {
		PrintWarning(fmt.Sprintf("Universe table not readable: %v (run with --seed to create it)", err))
		return nil
	}
	PrintSuccess(fmt.Sprintf("Active tickers in ivtracker.universe: %d", count))

	return nil
}

func seedUniverse(ctx context.Context, repo *universe.Repository, cfg *config.Config) error {
	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("create universe schema: %w", err)
	}
	if err := repo.Seed(ctx, cfg.Universe.Tickers); err != nil {
		return fmt.Errorf("seed universe: %w", err)
	}
	PrintSuccess("Universe table ready")
	return nil
}

// maskPassword hides the password part of a connection URL
func maskPassword(url string) string {
	if url == "" {
		return "(not set)"
	}

	at := strings.LastIndex(url, "@")
	scheme := strings.Index(url, "://")
	if at < 0 || scheme < 0 {
		return url
	}

	creds := url[scheme+3 : at]
	colon := strings.Index(creds, ":")
	if colon < 0 {
		return url
	}

	return url[:scheme+3] + creds[:colon] + ":****" + url[at:]
}
