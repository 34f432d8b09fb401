package classifier

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/wonny/ivtracker/internal/contracts"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		price     float64
		iv        float64
		sentiment contracts.SentimentLabel
		want      contracts.Recommendation
	}{
		{"strictly below margin and bullish", 69, 100, contracts.SentimentBullish, contracts.RecommendationStrongBuy},
		{"at margin boundary", 70, 100, contracts.SentimentBullish, contracts.RecommendationHold},
		{"below margin but not bullish", 50, 100, contracts.SentimentNeutralBearish, contracts.RecommendationHold},
		{"above intrinsic value", 101, 100, contracts.SentimentNeutralBearish, contracts.RecommendationSellOvervalued},
		{"above intrinsic value bullish", 150, 100, contracts.SentimentBullish, contracts.RecommendationSellOvervalued},
		{"between margin and value", 90, 100, contracts.SentimentNeutralBearish, contracts.RecommendationHold},
		{"equal to value", 100, 100, contracts.SentimentBullish, contracts.RecommendationHold},
		{"zero price", 0, 100, contracts.SentimentBullish, contracts.RecommendationHold},
		{"negative price", -5, 100, contracts.SentimentBullish, contracts.RecommendationHold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(d(tt.price), d(tt.iv), tt.sentiment))
		})
	}
}

func TestClassify_NonPositiveValueAlwaysHolds(t *testing.T) {
	for _, iv := range []float64{0, -0.01, -100} {
		for _, price := range []float64{-1, 0, 0.5, 1, 1000} {
			for _, s := range []contracts.SentimentLabel{contracts.SentimentBullish, contracts.SentimentNeutralBearish} {
				assert.Equal(t, contracts.RecommendationHold, Classify(d(price), d(iv), s),
					"price=%v iv=%v sentiment=%s", price, iv, s)
			}
		}
	}
}

func TestDiscount(t *testing.T) {
	assert.True(t, d(31).Equal(Discount(d(69), d(100))))
	assert.True(t, d(-10).Equal(Discount(d(110), d(100))))
	assert.True(t, Discount(d(10), d(0)).IsZero())
}

func TestExplain(t *testing.T) {
	strong := contracts.ResultRow{Symbol: "HAL.NS", CurrentPrice: d(69), IntrinsicValue: d(100), Recommendation: contracts.RecommendationStrongBuy}
	assert.Equal(t, "BUY ALERT: HAL.NS is 30% undervalued with positive news!", Explain(strong))

	sell := contracts.ResultRow{Symbol: "TCS.NS", CurrentPrice: d(120), IntrinsicValue: d(100), Recommendation: contracts.RecommendationSellOvervalued}
	assert.Equal(t, "TCS.NS trades 20% above its intrinsic value", Explain(sell))

	unavailable := contracts.ResultRow{Symbol: "INFY.NS", CurrentPrice: d(10), Recommendation: contracts.RecommendationHold}
	assert.Equal(t, "INFY.NS: valuation unavailable", Explain(unavailable))
}
