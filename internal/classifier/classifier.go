// Package classifier turns price, intrinsic value and sentiment into a recommendation.
package classifier

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wonny/ivtracker/internal/contracts"
)

// MarginOfSafety is the fraction of intrinsic value the price must stay strictly below
// to qualify as a strong buy (a 30% discount).
var MarginOfSafety = decimal.NewFromFloat(0.7)

// Classify maps (price, intrinsic value, sentiment) to a recommendation.
// Non-positive inputs are sentinel data and always yield HOLD.
// ⭐ SSOT: recommendation rules live here only
func Classify(price, intrinsicValue decimal.Decimal, sentiment contracts.SentimentLabel) contracts.Recommendation {
	if !price.IsPositive() || !intrinsicValue.IsPositive() {
		return contracts.RecommendationHold
	}

	if price.LessThan(intrinsicValue.Mul(MarginOfSafety)) && sentiment == contracts.SentimentBullish {
		return contracts.RecommendationStrongBuy
	}

	if price.GreaterThan(intrinsicValue) {
		return contracts.RecommendationSellOvervalued
	}

	return contracts.RecommendationHold
}

// Discount returns how far below intrinsic value the price sits, in percent.
// Negative means the price is above intrinsic value. Zero for sentinel inputs.
func Discount(price, intrinsicValue decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() || !intrinsicValue.IsPositive() {
		return decimal.Zero
	}
	return intrinsicValue.Sub(price).Div(intrinsicValue).Mul(decimal.NewFromInt(100)).Round(1)
}

// Explain returns the alert or status line for a row
func Explain(row contracts.ResultRow) string {
	switch row.Recommendation {
	case contracts.RecommendationStrongBuy:
		return fmt.Sprintf("BUY ALERT: %s is 30%% undervalued with positive news!", row.Symbol)
	case contracts.RecommendationSellOvervalued:
		return fmt.Sprintf("%s trades %s%% above its intrinsic value", row.Symbol,
			Discount(row.CurrentPrice, row.IntrinsicValue).Neg().String())
	default:
		if !row.IntrinsicValue.IsPositive() {
			return fmt.Sprintf("%s: valuation unavailable", row.Symbol)
		}
		return fmt.Sprintf("%s is fairly valued", row.Symbol)
	}
}
