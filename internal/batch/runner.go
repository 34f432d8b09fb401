// Package batch runs the per-symbol pipeline over a ticker universe:
// quote → intrinsic value + sentiment → recommendation.
package batch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/ivtracker/internal/classifier"
	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/internal/valuation"
	"github.com/wonny/ivtracker/pkg/logger"
)

// Mode is how symbols are scheduled
type Mode string

const (
	// ModeSequential processes one symbol after another, so latency grows
	// linearly with the universe. This is the default.
	ModeSequential Mode = "sequential"
	// ModeBounded fans out with at most Workers concurrent symbols
	ModeBounded Mode = "bounded"
)

// Report is the inspectable outcome of a run
type Report struct {
	Rows       contracts.ResultRows
	Failures   []SymbolError // input order
	Mode       Mode
	Requested  int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Skipped returns the symbols absent from Rows, in input order
func (r *Report) Skipped() []string {
	out := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		out[i] = f.Symbol
	}
	return out
}

// Interrupted reports whether any symbol was cut off by context cancellation
func (r *Report) Interrupted() bool {
	for _, f := range r.Failures {
		if f.Stage == StageCanceled {
			return true
		}
	}
	return false
}

// Duration of the run
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Runner is the Batch Runner
// ⭐ SSOT: the per-symbol failure isolation policy lives here only
type Runner struct {
	provider  contracts.QuoteProvider
	valuation *valuation.Engine
	sentiment contracts.SentimentEstimator
	logger    *logger.Logger
	workers   int
}

// NewRunner creates a runner. workers <= 1 selects ModeSequential.
func NewRunner(
	provider contracts.QuoteProvider,
	engine *valuation.Engine,
	sentiment contracts.SentimentEstimator,
	workers int,
	log *logger.Logger,
) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		provider:  provider,
		valuation: engine,
		sentiment: sentiment,
		logger:    log.Module("batch"),
		workers:   workers,
	}
}

// Mode reports the scheduling mode
func (r *Runner) Mode() Mode {
	if r.workers > 1 {
		return ModeBounded
	}
	return ModeSequential
}

// RunBatch returns one row per successfully processed symbol, in input order.
// Failed symbols are omitted and no error is returned.
func (r *Runner) RunBatch(ctx context.Context, symbols []string) contracts.ResultRows {
	report, _ := r.Run(ctx, symbols)
	return report.Rows
}

// Run processes symbols and reports failures. The report is always non-nil.
// It returns ErrNoSymbols for an empty universe, ErrBatchInterrupted (also
// wrapping the context error) when ctx ended mid-run, and ErrEmptyBatchResult
// when every symbol failed.
func (r *Runner) Run(ctx context.Context, symbols []string) (*Report, error) {
	report := &Report{
		Rows:      make(contracts.ResultRows, 0, len(symbols)),
		Mode:      r.Mode(),
		Requested: len(symbols),
		StartedAt: time.Now(),
	}

	if len(symbols) == 0 {
		report.FinishedAt = report.StartedAt
		return report, ErrNoSymbols
	}

	r.logger.WithFields(map[string]interface{}{
		"symbols":  len(symbols),
		"mode":     report.Mode,
		"workers":  r.workers,
		"provider": r.provider.Name(),
	}).Info("Batch started")

	outcomes := make([]outcome, len(symbols))
	if report.Mode == ModeSequential {
		for i, symbol := range symbols {
			outcomes[i] = r.processSymbol(ctx, symbol)
		}
	} else {
		r.fanOut(ctx, symbols, outcomes)
	}

	for _, o := range outcomes {
		if o.err != nil {
			report.Failures = append(report.Failures, *o.err)
			continue
		}
		report.Rows = append(report.Rows, o.row)
	}
	report.FinishedAt = time.Now()

	r.logger.WithFields(map[string]interface{}{
		"rows":        len(report.Rows),
		"failed":      len(report.Failures),
		"strong_buys": len(report.Rows.StrongBuys()),
		"duration":    report.Duration(),
	}).Info("Batch completed")

	if report.Interrupted() {
		return report, fmt.Errorf("%w after %d of %d symbols: %w",
			ErrBatchInterrupted, len(report.Rows), report.Requested, ctx.Err())
	}
	if len(report.Rows) == 0 {
		return report, ErrEmptyBatchResult
	}
	return report, nil
}

type outcome struct {
	row contracts.ResultRow
	err *SymbolError
}

// fanOut writes each outcome into its input slot, so order is kept
func (r *Runner) fanOut(ctx context.Context, symbols []string, outcomes []outcome) {
	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			outcomes[i] = r.processSymbol(ctx, symbol)
			return nil
		})
	}

	_ = g.Wait()
}

// processSymbol never panics and never returns an error to the caller
func (r *Runner) processSymbol(ctx context.Context, symbol string) (out outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.WithFields(map[string]interface{}{
				"symbol": symbol,
				"panic":  fmt.Sprint(rec),
			}).Error("Recovered panic while processing symbol")
			out = outcome{err: &SymbolError{Symbol: symbol, Stage: StagePanic, Err: fmt.Errorf("panic: %v", rec)}}
		}
	}()

	if err := ctx.Err(); err != nil {
		return outcome{err: &SymbolError{Symbol: symbol, Stage: StageCanceled, Err: err}}
	}

	data, err := r.provider.GetQuoteAndFundamentals(ctx, symbol)
	if err == nil && data == nil {
		err = fmt.Errorf("provider returned no data")
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcome{err: &SymbolError{Symbol: symbol, Stage: StageCanceled, Err: ctxErr}}
		}
		r.logger.WithError(err).WithField("symbol", symbol).Warn("Skipping symbol")
		return outcome{err: &SymbolError{Symbol: symbol, Stage: StageFetch, Err: err}}
	}

	q := data.Quote()
	iv := r.valuation.EstimateIntrinsicValue(data.Fundamentals)
	label := r.sentiment.EstimateSentiment(ctx, symbol)

	// rows carry the display price; classification uses the raw one
	row := contracts.ResultRow{
		Symbol:         symbol,
		CurrentPrice:   q.CurrentPrice.Round(2),
		IntrinsicValue: iv,
		Sentiment:      label,
		Recommendation: classifier.Classify(q.CurrentPrice, iv, label),
	}

	r.logger.WithFields(map[string]interface{}{
		"symbol":         symbol,
		"price":          row.CurrentPrice.String(),
		"intrinsic":      row.IntrinsicValue.String(),
		"sentiment":      row.Sentiment,
		"recommendation": row.Recommendation,
	}).Debug("Row computed")

	return outcome{row: row}
}
