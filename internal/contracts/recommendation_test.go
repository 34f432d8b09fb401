package contracts

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuoteData_PriceFallback(t *testing.T) {
	tests := []struct {
		name string
		data QuoteData
		want decimal.Decimal
	}{
		{"current price wins", QuoteData{CurrentPrice: Dec(101.5), PreviousClose: Dec(99)}, decimal.NewFromFloat(101.5)},
		{"previous close when current missing", QuoteData{PreviousClose: Dec(99)}, decimal.NewFromInt(99)},
		{"zero when both missing", QuoteData{}, decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.data.Symbol = "TCS.NS"
			q := tt.data.Quote()
			assert.Equal(t, "TCS.NS", q.Symbol)
			assert.True(t, tt.want.Equal(q.CurrentPrice), "got %s want %s", q.CurrentPrice, tt.want)
		})
	}
}

func TestFundamentalsDefaults(t *testing.T) {
	var f FundamentalsSnapshot
	assert.True(t, f.EPSOrZero().IsZero())
	assert.True(t, f.GrowthOr(decimal.NewFromFloat(0.05)).Equal(decimal.NewFromFloat(0.05)))

	f = FundamentalsSnapshot{TrailingEPS: Dec(12.3), QuarterlyEarningsGrowth: Dec(0.2)}
	assert.True(t, f.EPSOrZero().Equal(decimal.NewFromFloat(12.3)))
	assert.True(t, f.GrowthOr(decimal.NewFromFloat(0.05)).Equal(decimal.NewFromFloat(0.2)))
}

func TestResultRows_StrongBuys(t *testing.T) {
	rows := ResultRows{
		{Symbol: "A", Recommendation: RecommendationStrongBuy},
		{Symbol: "B", Recommendation: RecommendationHold},
		{Symbol: "C", Recommendation: RecommendationSellOvervalued},
		{Symbol: "D", Recommendation: RecommendationStrongBuy},
	}

	assert.Equal(t, []string{"A", "D"}, rows.StrongBuys().Symbols())
	assert.Equal(t, []string{"A", "B", "C", "D"}, rows.Symbols())
	assert.Empty(t, ResultRows{}.StrongBuys())
}

func TestRecommendation_Display(t *testing.T) {
	assert.Equal(t, "🔥 STRONG BUY", RecommendationStrongBuy.Display())
	assert.Equal(t, "⚠️ SELL / OVERVALUED", RecommendationSellOvervalued.Display())
	assert.Equal(t, "HOLD", RecommendationHold.Display())
}

func TestBatchResult_Empty(t *testing.T) {
	var nilResult *BatchResult
	assert.True(t, nilResult.Empty())
	assert.True(t, (&BatchResult{}).Empty())
	assert.False(t, (&BatchResult{Rows: ResultRows{{Symbol: "A"}}}).Empty())
}
