package valuation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/pkg/config"
	"github.com/wonny/ivtracker/pkg/logger"
)

func newEngine() *Engine {
	return NewEngine(DefaultPolicy(), logger.NewNop())
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		name     string
		snapshot contracts.FundamentalsSnapshot
		want     string
	}{
		{
			// 10 * (8.5 + 2*20) * 4.4 / 7 = 304.857...
			name:     "eps and growth present",
			snapshot: contracts.FundamentalsSnapshot{TrailingEPS: contracts.Dec(10), QuarterlyEarningsGrowth: contracts.Dec(0.2)},
			want:     "304.86",
		},
		{
			// 10 * (8.5 + 2*5) * 4.4 / 7 = 116.285...
			name:     "growth absent uses default",
			snapshot: contracts.FundamentalsSnapshot{TrailingEPS: contracts.Dec(10)},
			want:     "116.29",
		},
		{
			// 7 * 8.5 * 4.4 / 7 = 37.4
			name:     "zero growth",
			snapshot: contracts.FundamentalsSnapshot{TrailingEPS: contracts.Dec(7), QuarterlyEarningsGrowth: contracts.Dec(0)},
			want:     "37.4",
		},
		{
			name:     "eps absent",
			snapshot: contracts.FundamentalsSnapshot{QuarterlyEarningsGrowth: contracts.Dec(0.3)},
			want:     "0",
		},
		{
			// -2 * (8.5 + 10) * 4.4 / 7 = -23.257...
			name:     "negative eps passes through",
			snapshot: contracts.FundamentalsSnapshot{TrailingEPS: contracts.Dec(-2)},
			want:     "-23.26",
		},
	}

	engine := newEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Estimate(tt.snapshot)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestEstimate_ZeroEPSIsZeroForAnyGrowth(t *testing.T) {
	engine := newEngine()
	for _, g := range []float64{-0.5, 0, 0.05, 0.1, 1, 25} {
		snapshot := contracts.FundamentalsSnapshot{TrailingEPS: contracts.Dec(0), QuarterlyEarningsGrowth: contracts.Dec(g)}
		assert.True(t, engine.EstimateIntrinsicValue(snapshot).IsZero(), "growth %v", g)
	}
}

func TestEstimate_MonotonicInGrowth(t *testing.T) {
	engine := newEngine()
	eps := contracts.Dec(3.17)

	prev := decimal.NewFromInt(-1 << 30)
	for g := -0.5; g <= 2.0; g += 0.01 {
		v := engine.EstimateIntrinsicValue(contracts.FundamentalsSnapshot{
			TrailingEPS:             eps,
			QuarterlyEarningsGrowth: contracts.Dec(g),
		})
		assert.True(t, v.GreaterThanOrEqual(prev), "growth %v: %s < %s", g, v, prev)
		prev = v
	}
}

func TestEstimate_Idempotent(t *testing.T) {
	engine := newEngine()
	snapshot := contracts.FundamentalsSnapshot{TrailingEPS: contracts.Dec(51.3), QuarterlyEarningsGrowth: contracts.Dec(0.137)}

	first := engine.EstimateIntrinsicValue(snapshot)
	second := engine.EstimateIntrinsicValue(snapshot)
	assert.True(t, first.Equal(second))
}

func TestEstimate_InvalidPolicy(t *testing.T) {
	engine := NewEngine(Policy{DefaultGrowth: decimal.NewFromFloat(0.05), BondYield: decimal.Zero}, logger.NewNop())
	snapshot := contracts.FundamentalsSnapshot{TrailingEPS: contracts.Dec(10)}

	_, err := engine.Estimate(snapshot)
	assert.ErrorIs(t, err, ErrValuationUnavailable)
	assert.True(t, engine.EstimateIntrinsicValue(snapshot).IsZero())
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.ValuationConfig{DefaultGrowth: 0.1, BondYield: 6.5})
	assert.True(t, p.DefaultGrowth.Equal(decimal.NewFromFloat(0.1)))
	assert.True(t, p.BondYield.Equal(decimal.NewFromFloat(6.5)))
}

func TestEngine_PolicyFromConfigChangesValue(t *testing.T) {
	engine := NewEngine(PolicyFromConfig(config.ValuationConfig{DefaultGrowth: 0.05, BondYield: 4.4}), logger.NewNop())
	assert.True(t, engine.Policy().BondYield.Equal(decimal.NewFromFloat(4.4)))

	// Y equal to the AAA yield cancels out: 10 × (8.5 + 10) = 185
	value := engine.EstimateIntrinsicValue(contracts.FundamentalsSnapshot{TrailingEPS: contracts.Dec(10)})
	assert.Equal(t, "185", value.String())
}
