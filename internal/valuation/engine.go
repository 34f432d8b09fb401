// Package valuation estimates intrinsic value with the Graham growth formula
//
//	V = EPS × (8.5 + 2g) × 4.4 / Y
//
// where g is the expected growth in percent and Y the assumed long-term bond yield.
package valuation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/pkg/config"
	"github.com/wonny/ivtracker/pkg/logger"
)

// ErrValuationUnavailable means no meaningful value could be computed.
// EstimateIntrinsicValue collapses it to the sentinel 0.
var ErrValuationUnavailable = errors.New("valuation unavailable")

var (
	noGrowthPE   = decimal.NewFromFloat(8.5)
	growthFactor = decimal.NewFromInt(2)
	aaaYield     = decimal.NewFromFloat(4.4)
	hundred      = decimal.NewFromInt(100)
)

// Policy holds the fixed parameters of the formula
type Policy struct {
	DefaultGrowth decimal.Decimal // ratio used when growth is absent
	BondYield     decimal.Decimal // Y, percent
}

// DefaultPolicy is 5% default growth and a 7% bond yield
func DefaultPolicy() Policy {
	return Policy{
		DefaultGrowth: decimal.NewFromFloat(0.05),
		BondYield:     decimal.NewFromInt(7),
	}
}

// PolicyFromConfig builds the policy from VALUATION_* settings
func PolicyFromConfig(cfg config.ValuationConfig) Policy {
	return Policy{
		DefaultGrowth: decimal.NewFromFloat(cfg.DefaultGrowth),
		BondYield:     decimal.NewFromFloat(cfg.BondYield),
	}
}

// Engine is the Valuation Engine. It is stateless apart from its policy.
// ⭐ SSOT: intrinsic value is computed here only
type Engine struct {
	policy Policy
	logger *logger.Logger
}

// NewEngine creates a valuation engine
func NewEngine(policy Policy, log *logger.Logger) *Engine {
	return &Engine{
		policy: policy,
		logger: log.Module("valuation"),
	}
}

// Policy returns the engine policy
func (e *Engine) Policy() Policy {
	return e.policy
}

// Estimate returns the intrinsic value rounded to 2 decimals, or an error
// wrapping ErrValuationUnavailable.
func (e *Engine) Estimate(snapshot contracts.FundamentalsSnapshot) (decimal.Decimal, error) {
	eps := snapshot.EPSOrZero()
	if eps.IsZero() {
		return decimal.Zero, nil
	}

	if !e.policy.BondYield.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: bond yield must be positive, got %s", ErrValuationUnavailable, e.policy.BondYield)
	}

	growth := snapshot.GrowthOr(e.policy.DefaultGrowth)
	gPct := growth.Mul(hundred)

	multiple := noGrowthPE.Add(growthFactor.Mul(gPct))
	value := eps.Mul(multiple).Mul(aaaYield).Div(e.policy.BondYield)

	return value.Round(2), nil
}

// EstimateIntrinsicValue is the sentinel variant: any failure yields 0
func (e *Engine) EstimateIntrinsicValue(snapshot contracts.FundamentalsSnapshot) decimal.Decimal {
	value, err := e.Estimate(snapshot)
	if err != nil {
		e.logger.WithError(err).Debug("Valuation unavailable, using sentinel 0")
		return decimal.Zero
	}
	return value
}
