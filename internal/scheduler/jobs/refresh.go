package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/ivtracker/internal/batch"
	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/pkg/logger"
)

// Refresher recomputes the recommendation batch, bypassing the cache
type Refresher interface {
	Refresh(ctx context.Context) (*contracts.BatchResult, error)
}

// RefreshJob recomputes recommendations on a schedule.
// Subscribers of the tracker (the websocket hub) see the fresh batch.
type RefreshJob struct {
	refresher Refresher
	schedule  string
	logger    *logger.Logger
}

// NewRefreshJob creates a new refresh job
func NewRefreshJob(refresher Refresher, schedule string, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		refresher: refresher,
		schedule:  schedule,
		logger:    log.Module("refresh_job"),
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "refresh_recommendations"
}

// Schedule returns the cron schedule (REFRESH_CRON)
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run executes the refresh. An empty universe is not retried.
func (j *RefreshJob) Run(ctx context.Context) error {
	result, err := j.refresher.Refresh(ctx)
	switch {
	case errors.Is(err, batch.ErrNoSymbols):
		j.logger.Warn("No tickers configured, nothing to refresh")
		return nil
	case err != nil:
		return fmt.Errorf("refresh recommendations: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"rows":        len(result.Rows),
		"skipped":     len(result.Skipped),
		"strong_buys": len(result.Rows.StrongBuys()),
	}).Info("Recommendations refreshed")

	return nil
}
