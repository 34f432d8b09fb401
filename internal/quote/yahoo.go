package quote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/pkg/httputil"
	"github.com/wonny/ivtracker/pkg/logger"
)

const (
	summaryModules   = "financialData,defaultKeyStatistics,summaryDetail"
	defaultCookieURL = "https://fc.yahoo.com"
)

var errNoCrumb = errors.New("crumb endpoint returned no crumb")

// YahooProvider reads quoteSummary from the Yahoo Finance JSON API.
// quoteSummary only answers requests that carry a session cookie and the
// crumb bound to it, so the provider fetches both once and reuses them
// until Yahoo rejects the crumb with 401.
// ⭐ SSOT: Yahoo Finance calls go through this provider only
type YahooProvider struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	cookieURL  string

	mu    sync.Mutex
	crumb string
}

// NewYahooProvider creates a Yahoo provider against baseURL.
// httpClient is dedicated to the provider; it gets a cookie jar.
func NewYahooProvider(httpClient *httputil.Client, log *logger.Logger, baseURL string) *YahooProvider {
	return &YahooProvider{
		httpClient: httpClient.WithCookieJar().WithHeader("Accept", "application/json"),
		logger:     log.Module("quote.yahoo"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		cookieURL:  defaultCookieURL,
	}
}

// WithCookieURL sets the page that issues the session cookie. Empty keeps the default.
func (p *YahooProvider) WithCookieURL(cookieURL string) *YahooProvider {
	if cookieURL != "" {
		p.cookieURL = cookieURL
	}
	return p
}

// Name implements contracts.QuoteProvider
func (p *YahooProvider) Name() string { return "yahoo" }

type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (v *rawValue) decimal() *decimal.Decimal {
	if v == nil || v.Raw == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v.Raw)
	return &d
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			FinancialData *struct {
				CurrentPrice   *rawValue `json:"currentPrice"`
				EarningsGrowth *rawValue `json:"earningsGrowth"`
			} `json:"financialData"`
			DefaultKeyStatistics *struct {
				TrailingEps             *rawValue `json:"trailingEps"`
				EarningsQuarterlyGrowth *rawValue `json:"earningsQuarterlyGrowth"`
			} `json:"defaultKeyStatistics"`
			SummaryDetail *struct {
				PreviousClose *rawValue `json:"previousClose"`
			} `json:"summaryDetail"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

// GetQuoteAndFundamentals implements contracts.QuoteProvider
func (p *YahooProvider) GetQuoteAndFundamentals(ctx context.Context, symbol string) (*contracts.QuoteData, error) {
	body, err := p.fetchSummary(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if e := body.QuoteSummary.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, notFound(symbol, e.Description)
		}
		return nil, invalid(symbol, fmt.Sprintf("%s: %s", e.Code, e.Description))
	}
	if len(body.QuoteSummary.Result) == 0 {
		return nil, notFound(symbol, "empty quoteSummary result")
	}

	r := body.QuoteSummary.Result[0]
	data := &contracts.QuoteData{Symbol: symbol}

	if r.FinancialData != nil {
		data.CurrentPrice = r.FinancialData.CurrentPrice.decimal()
	}
	if r.SummaryDetail != nil {
		data.PreviousClose = r.SummaryDetail.PreviousClose.decimal()
	}
	if r.DefaultKeyStatistics != nil {
		data.Fundamentals.TrailingEPS = r.DefaultKeyStatistics.TrailingEps.decimal()
		data.Fundamentals.QuarterlyEarningsGrowth = r.DefaultKeyStatistics.EarningsQuarterlyGrowth.decimal()
	}
	if data.Fundamentals.QuarterlyEarningsGrowth == nil && r.FinancialData != nil {
		data.Fundamentals.QuarterlyEarningsGrowth = r.FinancialData.EarningsGrowth.decimal()
	}

	p.logger.WithFields(map[string]interface{}{
		"symbol":     symbol,
		"has_price":  data.CurrentPrice != nil,
		"has_prev":   data.PreviousClose != nil,
		"has_eps":    data.Fundamentals.TrailingEPS != nil,
		"has_growth": data.Fundamentals.QuarterlyEarningsGrowth != nil,
	}).Debug("Quote fetched")

	return data, nil
}

// fetchSummary retries once with a fresh crumb when the current one is rejected
func (p *YahooProvider) fetchSummary(ctx context.Context, symbol string) (*quoteSummaryResponse, error) {
	for attempt := 0; ; attempt++ {
		crumb, err := p.sessionCrumb(ctx)
		if err != nil {
			fe := httpFetchError(symbol, err)
			fe.Message = "crumb handshake: " + fe.Message
			return nil, fe
		}

		endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s&crumb=%s",
			p.baseURL, url.PathEscape(symbol), url.QueryEscape(summaryModules), url.QueryEscape(crumb))

		var body quoteSummaryResponse
		err = p.httpClient.GetJSON(ctx, endpoint, &body)

		var statusErr *httputil.StatusError
		if attempt == 0 && errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
			p.logger.WithField("symbol", symbol).Info("Yahoo crumb rejected, renewing session")
			p.dropCrumb(crumb)
			continue
		}
		if err != nil {
			return nil, httpFetchError(symbol, err)
		}
		return &body, nil
	}
}

// sessionCrumb returns the cached crumb, running the cookie and crumb
// handshake when there is none
func (p *YahooProvider) sessionCrumb(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.crumb != "" {
		return p.crumb, nil
	}

	// the cookie page usually answers 404; only its Set-Cookie matters
	resp, err := p.httpClient.Get(ctx, p.cookieURL)
	if err != nil {
		return "", fmt.Errorf("fetch session cookie: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	crumb, err := p.httpClient.GetText(ctx, p.baseURL+"/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("fetch crumb: %w", err)
	}
	if crumb == "" || strings.ContainsAny(crumb, "<{ ") {
		return "", errNoCrumb
	}

	p.crumb = crumb
	p.logger.Debug("Yahoo session established")
	return crumb, nil
}

func (p *YahooProvider) dropCrumb(stale string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.crumb == stale {
		p.crumb = ""
	}
}

// httpFetchError maps an httputil error to a FetchError
func httpFetchError(symbol string, err error) *FetchError {
	var statusErr *httputil.StatusError
	switch {
	case errors.As(err, &statusErr):
		fe := classifyStatus(symbol, statusErr.StatusCode, statusErr.Body)
		fe.Cause = err
		return fe
	case errors.Is(err, httputil.ErrDecode):
		return &FetchError{Kind: KindValidation, Symbol: symbol, Message: "malformed response", Cause: err}
	case errors.Is(err, errNoCrumb):
		return &FetchError{Kind: KindValidation, Symbol: symbol, Message: err.Error(), Cause: err}
	default:
		return classifyTransport(symbol, err)
	}
}
