package sentiment

import (
	"context"
	"fmt"
)

// HeadlineSource supplies recent headlines for a symbol
type HeadlineSource interface {
	Name() string
	Headlines(ctx context.Context, symbol string) ([]string, error)
}

// MockHeadlines returns fixed placeholder headlines, which score Bullish
type MockHeadlines struct{}

// Name implements HeadlineSource
func (MockHeadlines) Name() string { return "mock" }

// Headlines implements HeadlineSource
func (MockHeadlines) Headlines(_ context.Context, symbol string) ([]string, error) {
	return []string{
		fmt.Sprintf("Positive growth expected for %s", symbol),
		fmt.Sprintf("%s beats earnings", symbol),
	}, nil
}
