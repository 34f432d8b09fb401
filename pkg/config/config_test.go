package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	// Check defaults
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "yahoo", cfg.Quote.Provider)
	assert.Equal(t, 0.05, cfg.Valuation.DefaultGrowth)
	assert.Equal(t, 7.0, cfg.Valuation.BondYield)
	assert.Equal(t, 1, cfg.Batch.Workers)
	assert.Equal(t, 5*time.Minute, cfg.Batch.CacheTTL)
	assert.Equal(t, 90*time.Second, cfg.Batch.Timeout)
	assert.Equal(t, "https://fc.yahoo.com", cfg.Quote.CookieURL)
	assert.Equal(t, DefaultTickers, cfg.Universe.Tickers)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("TICKERS", "AAPL, MSFT ,,GOOG")
	t.Setenv("VALUATION_DEFAULT_GROWTH", "0.1")
	t.Setenv("BATCH_WORKERS", "4")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOG"}, cfg.Universe.Tickers)
	assert.Equal(t, 0.1, cfg.Valuation.DefaultGrowth)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadEmptyTickerListIsNotAnError(t *testing.T) {
	t.Setenv("TICKERS", " , ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg.Universe.Tickers)
	assert.Empty(t, cfg.Universe.Tickers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"invalid env", map[string]string{"ENV": "invalid"}},
		{"unknown provider", map[string]string{"QUOTE_PROVIDER": "bloomberg"}},
		{"static provider without file", map[string]string{"QUOTE_PROVIDER": "static"}},
		{"headline source without placeholder", map[string]string{"SENTIMENT_SOURCE": "headlines", "SENTIMENT_HEADLINE_URL": "https://news.example.com"}},
		{"database universe without url", map[string]string{"UNIVERSE_SOURCE": "database"}},
		{"file universe without path", map[string]string{"UNIVERSE_SOURCE": "file"}},
		{"zero bond yield", map[string]string{"VALUATION_BOND_YIELD": "0"}},
		{"zero workers", map[string]string{"BATCH_WORKERS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "2h")
	assert.Equal(t, 2*time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))

	t.Setenv("TEST_DURATION", "garbage")
	assert.Equal(t, time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT", "100")
	assert.Equal(t, 100, getEnvAsInt("TEST_INT", 50))

	t.Setenv("TEST_INT", "abc")
	assert.Equal(t, 50, getEnvAsInt("TEST_INT", 50))
}

func TestGetEnvAsFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.25")
	assert.Equal(t, 0.25, getEnvAsFloat("TEST_FLOAT", 1))
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	assert.True(t, getEnvAsBool("TEST_BOOL", false))
}
