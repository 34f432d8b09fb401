package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/ivtracker/internal/api"
	"github.com/wonny/ivtracker/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API and the websocket alert feed.

Endpoints:
  GET  /health                 - Health check
  GET  /api/recommendations    - Cached recommendation table (?refresh=true to recompute)
  GET  /api/alerts             - STRONG BUY alerts
  POST /api/refresh            - Drop the cache and recompute
  GET  /ws/alerts              - Websocket, pushes alerts after every recompute

Example:
  go run ./cmd/ivtracker api
  go run ./cmd/ivtracker api --port 8080 --schedule`,
	RunE: runAPIServer,
}

var (
	apiPort     string
	apiSchedule bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
	apiCmd.Flags().BoolVar(&apiSchedule, "schedule", false, "also run the refresh scheduler (REFRESH_CRON)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== ivtracker API Server ===")

	// 1. Wire the pipeline
	a, err := newApp(context.Background(), overrides{})
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.log

	// 2. Alert hub receives every fresh batch
	hub := api.NewAlertHub(log)
	a.tracker.Subscribe(hub.Publish)

	// 3. Handlers
	checks := map[string]handlers.Pinger{}
	if a.redis.Enabled() {
		checks["redis"] = a.redis
	}
	if a.db != nil {
		checks["database"] = a.db
	}
	recHandler := handlers.NewRecommendationHandler(a.tracker, log)
	healthHandler := handlers.NewHealthHandler(log, checks)

	// 4. Router + server
	router := api.NewRouter(recHandler, healthHandler, hub, log)
	server := api.New(a.cfg, log, router)

	// 5. Optional scheduler
	if apiSchedule {
		sched, err := buildScheduler(a)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()

		// warm the cache so the first request is served from it
		go func() {
			if _, err := sched.RunJobSync(context.Background(), refreshJobName); err != nil {
				log.WithError(err).Warn("Initial refresh failed")
			}
		}()
	}

	// 6. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/recommendations")
	fmt.Println("  GET  /api/alerts")
	fmt.Println("  POST /api/refresh")
	fmt.Println("  GET  /ws/alerts")
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-quit:
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
