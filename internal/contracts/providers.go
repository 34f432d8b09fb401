package contracts

import "context"

// QuoteProvider supplies price and fundamentals for one symbol. May fail per symbol.
// ⭐ SSOT: quote source interface
type QuoteProvider interface {
	Name() string
	GetQuoteAndFundamentals(ctx context.Context, symbol string) (*QuoteData, error)
}

// SentimentEstimator labels a symbol. Implementations degrade to
// SentimentNeutralBearish instead of failing.
type SentimentEstimator interface {
	EstimateSentiment(ctx context.Context, symbol string) SentimentLabel
}

// UniverseSource yields the ordered ticker universe
type UniverseSource interface {
	Name() string
	Symbols(ctx context.Context) ([]string, error)
}
