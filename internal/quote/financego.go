package quote

import (
	"context"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"
	"github.com/shopspring/decimal"

	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/pkg/logger"
)

// FinanceGoProvider reads quotes through github.com/piquette/finance-go.
// The library exposes no quarterly growth, so growth is always absent.
type FinanceGoProvider struct {
	logger    *logger.Logger
	getEquity func(symbol string) (*finance.Equity, error)
}

// NewFinanceGoProvider creates a provider backed by finance-go's equity endpoint
func NewFinanceGoProvider(log *logger.Logger) *FinanceGoProvider {
	return &FinanceGoProvider{
		logger:    log.Module("quote.financego"),
		getEquity: equity.Get,
	}
}

// Name implements contracts.QuoteProvider
func (p *FinanceGoProvider) Name() string { return "financego" }

// GetQuoteAndFundamentals implements contracts.QuoteProvider.
// finance-go has no context support; cancellation is checked before the call.
func (p *FinanceGoProvider) GetQuoteAndFundamentals(ctx context.Context, symbol string) (*contracts.QuoteData, error) {
	if err := ctx.Err(); err != nil {
		return nil, classifyTransport(symbol, err)
	}

	eq, err := p.getEquity(symbol)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Symbol: symbol, Message: "finance-go request failed", Cause: err}
	}
	if eq == nil {
		return nil, notFound(symbol, "no equity returned")
	}

	data := &contracts.QuoteData{
		Symbol:        symbol,
		CurrentPrice:  nonZero(eq.RegularMarketPrice),
		PreviousClose: nonZero(eq.RegularMarketPreviousClose),
		Fundamentals: contracts.FundamentalsSnapshot{
			TrailingEPS: nonZero(eq.EpsTrailingTwelveMonths),
		},
	}

	p.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"price":  eq.RegularMarketPrice,
	}).Debug("Quote fetched")

	return data, nil
}

// nonZero treats finance-go's zero values as absent
func nonZero(v float64) *decimal.Decimal {
	if v == 0 {
		return nil
	}
	d := decimal.NewFromFloat(v)
	return &d
}
