package quote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ivtracker/pkg/config"
	"github.com/wonny/ivtracker/pkg/httputil"
	"github.com/wonny/ivtracker/pkg/logger"
)

const fullSummary = `{"quoteSummary":{"result":[{
	"financialData":{"currentPrice":{"raw":3512.4,"fmt":"3,512.40"},"earningsGrowth":{"raw":0.11}},
	"defaultKeyStatistics":{"trailingEps":{"raw":128.6,"fmt":"128.60"},"earningsQuarterlyGrowth":{"raw":0.087}},
	"summaryDetail":{"previousClose":{"raw":3490.1}}
}],"error":null}}`

// yahooStub mimics the session handshake: /consent sets the cookie,
// getcrumb needs the cookie, quoteSummary needs both
type yahooStub struct {
	crumb        atomic.Value
	crumbFetches int32
	rejected     int32
}

func (y *yahooStub) hasSession(r *http.Request) bool {
	c, err := r.Cookie("A3")
	return err == nil && c.Value == "session-1"
}

func newYahooServer(t *testing.T, stub *yahooStub) *httptest.Server {
	t.Helper()
	stub.crumb.Store("crumb-1")

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		switch r.URL.Path {
		case "/consent":
			http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session-1", Path: "/"})
			w.WriteHeader(http.StatusNotFound)
			return
		case "/v1/test/getcrumb":
			atomic.AddInt32(&stub.crumbFetches, 1)
			if !stub.hasSession(r) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(stub.crumb.Load().(string)))
			return
		}

		if !stub.hasSession(r) || r.URL.Query().Get("crumb") != stub.crumb.Load().(string) {
			atomic.AddInt32(&stub.rejected, 1)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"finance":{"result":null,"error":{"code":"Unauthorized","description":"Invalid Crumb"}}}`))
			return
		}
		assert.Equal(t, "financialData,defaultKeyStatistics,summaryDetail", r.URL.Query().Get("modules"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		symbol := strings.TrimPrefix(r.URL.Path, "/v10/finance/quoteSummary/")
		switch symbol {
		case "TCS.NS":
			w.Write([]byte(fullSummary))
		case "PREV.NS":
			w.Write([]byte(`{"quoteSummary":{"result":[{
				"financialData":{"currentPrice":{}},
				"defaultKeyStatistics":{"trailingEps":{"raw":10}},
				"summaryDetail":{"previousClose":{"raw":95.5}}
			}],"error":null}}`))
		case "GROWTH.NS":
			w.Write([]byte(`{"quoteSummary":{"result":[{
				"financialData":{"currentPrice":{"raw":50},"earningsGrowth":{"raw":0.2}},
				"defaultKeyStatistics":{"trailingEps":{"raw":4}}
			}],"error":null}}`))
		case "EMPTY.NS":
			w.Write([]byte(`{"quoteSummary":{"result":[],"error":null}}`))
		case "BAD.NS":
			w.Write([]byte(`<html>not json</html>`))
		case "LIMIT.NS":
			w.WriteHeader(http.StatusTooManyRequests)
		case "BOOM.NS":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for ticker symbol"}}}`))
		}
	}))
}

func newTestYahooWith(t *testing.T, stub *yahooStub) *YahooProvider {
	t.Helper()
	server := newYahooServer(t, stub)
	t.Cleanup(server.Close)

	cfg := &config.Config{Quote: config.QuoteConfig{UserAgent: "Mozilla/5.0 test"}}
	client := httputil.New(cfg, logger.NewNop()).DisableRetry()
	return NewYahooProvider(client, logger.NewNop(), server.URL+"/").WithCookieURL(server.URL + "/consent")
}

func newTestYahoo(t *testing.T) *YahooProvider {
	t.Helper()
	return newTestYahooWith(t, &yahooStub{})
}

func TestYahooProvider_FullSnapshot(t *testing.T) {
	p := newTestYahoo(t)

	data, err := p.GetQuoteAndFundamentals(context.Background(), "TCS.NS")
	require.NoError(t, err)

	assert.Equal(t, "TCS.NS", data.Symbol)
	require.NotNil(t, data.CurrentPrice)
	assert.True(t, decimal.NewFromFloat(3512.4).Equal(*data.CurrentPrice))
	assert.True(t, decimal.NewFromFloat(3490.1).Equal(*data.PreviousClose))
	assert.True(t, decimal.NewFromFloat(128.6).Equal(*data.Fundamentals.TrailingEPS))
	assert.True(t, decimal.NewFromFloat(0.087).Equal(*data.Fundamentals.QuarterlyEarningsGrowth))
}

func TestYahooProvider_PreviousCloseFallback(t *testing.T) {
	p := newTestYahoo(t)

	data, err := p.GetQuoteAndFundamentals(context.Background(), "PREV.NS")
	require.NoError(t, err)

	assert.Nil(t, data.CurrentPrice)
	assert.Nil(t, data.Fundamentals.QuarterlyEarningsGrowth)
	assert.True(t, decimal.NewFromFloat(95.5).Equal(data.Quote().CurrentPrice))
}

func TestYahooProvider_GrowthFromFinancialData(t *testing.T) {
	p := newTestYahoo(t)

	data, err := p.GetQuoteAndFundamentals(context.Background(), "GROWTH.NS")
	require.NoError(t, err)
	require.NotNil(t, data.Fundamentals.QuarterlyEarningsGrowth)
	assert.True(t, decimal.NewFromFloat(0.2).Equal(*data.Fundamentals.QuarterlyEarningsGrowth))
	assert.Nil(t, data.PreviousClose)
}

func TestYahooProvider_Errors(t *testing.T) {
	p := newTestYahoo(t)

	tests := []struct {
		symbol string
		kind   ErrorKind
	}{
		{"MISSING.NS", KindNotFound},
		{"EMPTY.NS", KindNotFound},
		{"BAD.NS", KindValidation},
		{"LIMIT.NS", KindRateLimit},
		{"BOOM.NS", KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			_, err := p.GetQuoteAndFundamentals(context.Background(), tt.symbol)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestYahooProvider_SessionIsReused(t *testing.T) {
	stub := &yahooStub{}
	p := newTestYahooWith(t, stub)

	for _, symbol := range []string{"TCS.NS", "GROWTH.NS", "TCS.NS"} {
		_, err := p.GetQuoteAndFundamentals(context.Background(), symbol)
		require.NoError(t, err, symbol)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&stub.crumbFetches))
	assert.Equal(t, int32(0), atomic.LoadInt32(&stub.rejected))
}

func TestYahooProvider_RenewsRejectedCrumb(t *testing.T) {
	stub := &yahooStub{}
	p := newTestYahooWith(t, stub)

	_, err := p.GetQuoteAndFundamentals(context.Background(), "TCS.NS")
	require.NoError(t, err)

	stub.crumb.Store("crumb-2")

	data, err := p.GetQuoteAndFundamentals(context.Background(), "TCS.NS")
	require.NoError(t, err)
	assert.Equal(t, "TCS.NS", data.Symbol)
	assert.Equal(t, int32(2), atomic.LoadInt32(&stub.crumbFetches))
	assert.Equal(t, int32(1), atomic.LoadInt32(&stub.rejected))
}

func TestYahooProvider_HandshakeFailure(t *testing.T) {
	stub := &yahooStub{}
	server := newYahooServer(t, stub)
	defer server.Close()

	// a cookie page that sets nothing, so getcrumb refuses the session
	blank := httptest.NewServer(http.NotFoundHandler())
	defer blank.Close()

	client := httputil.New(&config.Config{}, logger.NewNop()).DisableRetry()
	p := NewYahooProvider(client, logger.NewNop(), server.URL).WithCookieURL(blank.URL)

	_, err := p.GetQuoteAndFundamentals(context.Background(), "TCS.NS")
	require.Error(t, err)
	assert.Equal(t, KindClient, KindOf(err))
	assert.Contains(t, err.Error(), "crumb handshake")
	assert.Equal(t, int32(0), atomic.LoadInt32(&stub.rejected))
}

func TestYahooProvider_NetworkError(t *testing.T) {
	client := httputil.New(&config.Config{}, logger.NewNop()).DisableRetry()
	p := NewYahooProvider(client, logger.NewNop(), "http://127.0.0.1:1").WithCookieURL("http://127.0.0.1:1/")

	_, err := p.GetQuoteAndFundamentals(context.Background(), "TCS.NS")
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
}
