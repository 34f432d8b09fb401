package contracts

import (
	"github.com/shopspring/decimal"
)

// FundamentalsSnapshot is the per-request fundamentals a quote provider returns.
// nil fields are absent.
type FundamentalsSnapshot struct {
	TrailingEPS             *decimal.Decimal `json:"trailing_eps,omitempty"`
	QuarterlyEarningsGrowth *decimal.Decimal `json:"quarterly_earnings_growth,omitempty"` // ratio, 0.12 = 12%
}

// EPSOrZero returns the trailing EPS, or 0 when absent
func (f FundamentalsSnapshot) EPSOrZero() decimal.Decimal {
	if f.TrailingEPS == nil {
		return decimal.Zero
	}
	return *f.TrailingEPS
}

// GrowthOr returns the quarterly earnings growth, or def when absent
func (f FundamentalsSnapshot) GrowthOr(def decimal.Decimal) decimal.Decimal {
	if f.QuarterlyEarningsGrowth == nil {
		return def
	}
	return *f.QuarterlyEarningsGrowth
}

// QuoteData is the raw answer of a QuoteProvider for one symbol
// ⭐ SSOT: Quote Provider → Batch Runner
type QuoteData struct {
	Symbol        string               `json:"symbol"`
	CurrentPrice  *decimal.Decimal     `json:"current_price,omitempty"`
	PreviousClose *decimal.Decimal     `json:"previous_close,omitempty"`
	Fundamentals  FundamentalsSnapshot `json:"fundamentals"`
}

// Quote is the resolved price of a symbol
type Quote struct {
	Symbol       string          `json:"symbol"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}

// Quote resolves the price: current price, then previous close, then 0
func (q QuoteData) Quote() Quote {
	price := decimal.Zero
	switch {
	case q.CurrentPrice != nil:
		price = *q.CurrentPrice
	case q.PreviousClose != nil:
		price = *q.PreviousClose
	}
	return Quote{Symbol: q.Symbol, CurrentPrice: price}
}

// Dec is a convenience for building optional decimal fields
func Dec(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}
