package jobs

import (
	"context"

	"github.com/wonny/ivtracker/pkg/logger"
)

// SentimentResetter drops cached sentiment labels
type SentimentResetter interface {
	Reset(ctx context.Context)
}

// SentimentResetJob clears cached sentiment so headlines are re-read
type SentimentResetJob struct {
	estimator SentimentResetter
	logger    *logger.Logger
}

// NewSentimentResetJob creates a new sentiment reset job
func NewSentimentResetJob(estimator SentimentResetter, log *logger.Logger) *SentimentResetJob {
	return &SentimentResetJob{
		estimator: estimator,
		logger:    log,
	}
}

// Name returns the job name
func (j *SentimentResetJob) Name() string {
	return "sentiment_reset"
}

// Schedule returns the cron schedule (hourly)
func (j *SentimentResetJob) Schedule() string {
	return "0 0 * * * *"
}

// Run executes the reset
func (j *SentimentResetJob) Run(ctx context.Context) error {
	j.estimator.Reset(ctx)
	j.logger.Debug("Sentiment cache cleared")
	return nil
}
