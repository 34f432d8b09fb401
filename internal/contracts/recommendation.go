package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// SentimentLabel is the coarse news sentiment attached to a symbol
type SentimentLabel string

const (
	SentimentBullish        SentimentLabel = "Bullish"
	SentimentNeutralBearish SentimentLabel = "Neutral/Bearish"
)

// Recommendation is derived per batch run and never persisted
type Recommendation string

const (
	RecommendationHold           Recommendation = "HOLD"
	RecommendationStrongBuy      Recommendation = "STRONG_BUY"
	RecommendationSellOvervalued Recommendation = "SELL_OVERVALUED"
)

// Display returns the dashboard label
func (r Recommendation) Display() string {
	switch r {
	case RecommendationStrongBuy:
		return "🔥 STRONG BUY"
	case RecommendationSellOvervalued:
		return "⚠️ SELL / OVERVALUED"
	default:
		return "HOLD"
	}
}

// ResultRow is one successfully processed symbol
// ⭐ SSOT: Batch Runner → Presentation
type ResultRow struct {
	Symbol         string          `json:"symbol"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
	IntrinsicValue decimal.Decimal `json:"intrinsic_value"`
	Sentiment      SentimentLabel  `json:"sentiment"`
	Recommendation Recommendation  `json:"recommendation"`
}

// IsStrongBuy is the alerting predicate
func IsStrongBuy(row ResultRow) bool {
	return row.Recommendation == RecommendationStrongBuy
}

// ResultRows is an ordered batch output, in input ticker order
type ResultRows []ResultRow

// StrongBuys returns the rows that drive alerts, preserving order
func (rs ResultRows) StrongBuys() ResultRows {
	out := make(ResultRows, 0)
	for _, r := range rs {
		if IsStrongBuy(r) {
			out = append(out, r)
		}
	}
	return out
}

// Symbols returns the symbols of the rows, in order
func (rs ResultRows) Symbols() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Symbol
	}
	return out
}

// BatchResult is a completed batch as cached and served
type BatchResult struct {
	Universe    []string   `json:"universe"`
	Rows        ResultRows `json:"rows"`
	Skipped     []string   `json:"skipped,omitempty"`
	GeneratedAt time.Time  `json:"generated_at"`
	CacheKey    string     `json:"cache_key"`
}

// Empty reports whether no symbol produced a row
func (b *BatchResult) Empty() bool {
	return b == nil || len(b.Rows) == 0
}
