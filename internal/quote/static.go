package quote

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/wonny/ivtracker/internal/contracts"
)

// StaticQuote is one canned entry. Omitted fields are absent.
type StaticQuote struct {
	CurrentPrice   *float64 `yaml:"current_price"`
	PreviousClose  *float64 `yaml:"previous_close"`
	TrailingEPS    *float64 `yaml:"trailing_eps"`
	EarningsGrowth *float64 `yaml:"earnings_growth"`
	Fail           string   `yaml:"fail"` // error kind to simulate
}

type staticFile struct {
	Quotes map[string]StaticQuote `yaml:"quotes"`
}

// StaticProvider serves canned data per symbol, for tests and offline runs
type StaticProvider struct {
	quotes map[string]StaticQuote
}

// NewStaticProvider creates a provider over an in-memory table
func NewStaticProvider(quotes map[string]StaticQuote) *StaticProvider {
	return &StaticProvider{quotes: quotes}
}

// LoadStaticProvider reads a YAML file of the form
//
//	quotes:
//	  TCS.NS: {current_price: 3500, trailing_eps: 120, earnings_growth: 0.08}
func LoadStaticProvider(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read static quote file: %w", err)
	}

	var f staticFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse static quote file: %w", err)
	}

	return NewStaticProvider(f.Quotes), nil
}

// Name implements contracts.QuoteProvider
func (p *StaticProvider) Name() string { return "static" }

// GetQuoteAndFundamentals implements contracts.QuoteProvider
func (p *StaticProvider) GetQuoteAndFundamentals(_ context.Context, symbol string) (*contracts.QuoteData, error) {
	q, ok := p.quotes[symbol]
	if !ok {
		return nil, notFound(symbol, "symbol not in static table")
	}
	if q.Fail != "" {
		return nil, &FetchError{Kind: ErrorKind(q.Fail), Symbol: symbol, Message: "simulated failure"}
	}

	return &contracts.QuoteData{
		Symbol:        symbol,
		CurrentPrice:  ptrDec(q.CurrentPrice),
		PreviousClose: ptrDec(q.PreviousClose),
		Fundamentals: contracts.FundamentalsSnapshot{
			TrailingEPS:             ptrDec(q.TrailingEPS),
			QuarterlyEarningsGrowth: ptrDec(q.EarningsGrowth),
		},
	}, nil
}

func ptrDec(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	return contracts.Dec(*v)
}
