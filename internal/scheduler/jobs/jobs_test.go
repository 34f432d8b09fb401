package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/wonny/ivtracker/internal/batch"
	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/pkg/logger"
)

type stubRefresher struct {
	result *contracts.BatchResult
	err    error
	calls  int
}

func (s *stubRefresher) Refresh(context.Context) (*contracts.BatchResult, error) {
	s.calls++
	return s.result, s.err
}

type stubResetter struct{ resets int }

func (s *stubResetter) Reset(context.Context) { s.resets++ }

func TestRefreshJob(t *testing.T) {
	ok := &stubRefresher{result: &contracts.BatchResult{Rows: contracts.ResultRows{{
		Symbol:         "HAL.NS",
		CurrentPrice:   decimal.NewFromInt(69),
		IntrinsicValue: decimal.NewFromInt(300),
		Recommendation: contracts.RecommendationStrongBuy,
	}}}}

	job := NewRefreshJob(ok, "0 */5 * * * *", logger.NewNop())
	assert.Equal(t, "refresh_recommendations", job.Name())
	assert.Equal(t, "0 */5 * * * *", job.Schedule())
	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, ok.calls)
}

func TestRefreshJob_Errors(t *testing.T) {
	noSymbols := NewRefreshJob(&stubRefresher{err: batch.ErrNoSymbols}, "@hourly", logger.NewNop())
	assert.NoError(t, noSymbols.Run(context.Background()))

	empty := NewRefreshJob(&stubRefresher{err: batch.ErrEmptyBatchResult}, "@hourly", logger.NewNop())
	assert.ErrorIs(t, empty.Run(context.Background()), batch.ErrEmptyBatchResult)

	other := NewRefreshJob(&stubRefresher{err: errors.New("redis down")}, "@hourly", logger.NewNop())
	assert.ErrorContains(t, other.Run(context.Background()), "redis down")
}

func TestSentimentResetJob(t *testing.T) {
	r := &stubResetter{}
	job := NewSentimentResetJob(r, logger.NewNop())

	assert.Equal(t, "sentiment_reset", job.Name())
	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, r.resets)
}
