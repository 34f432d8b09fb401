package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultTickers is the universe scanned when neither TICKERS nor a universe file is set.
var DefaultTickers = []string{
	"RELIANCE.NS",
	"TCS.NS",
	"HDFCBANK.NS",
	"INFY.NS",
	"ICICIBANK.NS",
	"TATAMOTORS.NS",
	"HAL.NS",
}

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production, test

	// Database (optional, only used by the database universe source)
	Database DatabaseConfig

	// Redis (optional, batch cache + shared rate limit)
	Redis RedisConfig

	// Pipeline
	Quote     QuoteConfig
	Valuation ValuationConfig
	Sentiment SentimentConfig
	Universe  UniverseConfig
	Batch     BatchConfig
	Schedule  ScheduleConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// QuoteConfig selects and tunes the quote provider
type QuoteConfig struct {
	Provider   string // yahoo, financego, static
	BaseURL    string
	CookieURL  string // issues the session cookie the crumb is bound to
	UserAgent  string
	StaticFile string
	RateLimit  float64 // requests per second, 0 = unlimited
	Timeout    time.Duration
}

// ValuationConfig holds the Graham formula policy parameters
type ValuationConfig struct {
	DefaultGrowth float64 // used when quarterly earnings growth is absent
	BondYield     float64 // Y in the Graham formula, percent
}

// SentimentConfig selects the headline source for the sentiment estimator
type SentimentConfig struct {
	Source      string // mock, headlines
	HeadlineURL string // {symbol} is substituted
	Selector    string
	CacheTTL    time.Duration
}

// UniverseConfig describes where the ticker list comes from
type UniverseConfig struct {
	Source  string // config, file, database
	Tickers []string
	File    string
}

// BatchConfig tunes the batch runner and its cache
type BatchConfig struct {
	Workers  int
	CacheTTL time.Duration
	Timeout  time.Duration // upper bound for one batch computation
}

// ScheduleConfig holds cron expressions (with seconds)
type ScheduleConfig struct {
	RefreshCron string
}

// Provider, source and environment values accepted by validate
var (
	validEnvs             = []string{"development", "staging", "production", "test"}
	validQuoteProviders   = []string{"yahoo", "financego", "static"}
	validSentimentSources = []string{"mock", "headlines"}
	validUniverseSources  = []string{"config", "file", "database"}
)

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 5),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Quote: QuoteConfig{
			Provider:   strings.ToLower(getEnv("QUOTE_PROVIDER", "yahoo")),
			BaseURL:    getEnv("YAHOO_BASE_URL", "https://query2.finance.yahoo.com"),
			CookieURL:  getEnv("YAHOO_COOKIE_URL", "https://fc.yahoo.com"),
			UserAgent:  getEnv("QUOTE_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
			StaticFile: getEnv("QUOTE_STATIC_FILE", ""),
			RateLimit:  getEnvAsFloat("QUOTE_RATE_LIMIT", 2),
			Timeout:    getEnvAsDuration("QUOTE_TIMEOUT", "15s"),
		},

		Valuation: ValuationConfig{
			DefaultGrowth: getEnvAsFloat("VALUATION_DEFAULT_GROWTH", 0.05),
			BondYield:     getEnvAsFloat("VALUATION_BOND_YIELD", 7),
		},

		Sentiment: SentimentConfig{
			Source:      strings.ToLower(getEnv("SENTIMENT_SOURCE", "mock")),
			HeadlineURL: getEnv("SENTIMENT_HEADLINE_URL", ""),
			Selector:    getEnv("SENTIMENT_HEADLINE_SELECTOR", "h3"),
			CacheTTL:    getEnvAsDuration("SENTIMENT_CACHE_TTL", "1h"),
		},

		Universe: UniverseConfig{
			Source:  strings.ToLower(getEnv("UNIVERSE_SOURCE", "config")),
			Tickers: getEnvAsList("TICKERS", DefaultTickers),
			File:    getEnv("UNIVERSE_FILE", ""),
		},

		Batch: BatchConfig{
			Workers:  getEnvAsInt("BATCH_WORKERS", 1),
			CacheTTL: getEnvAsDuration("BATCH_CACHE_TTL", "5m"),
			Timeout:  getEnvAsDuration("BATCH_TIMEOUT", "90s"),
		},

		Schedule: ScheduleConfig{
			RefreshCron: getEnv("REFRESH_CRON", "0 */5 * * * *"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are consistent
func (c *Config) validate() error {
	if !contains(validEnvs, c.Env) {
		return fmt.Errorf("ENV must be one of: %s", strings.Join(validEnvs, ", "))
	}

	if !contains(validQuoteProviders, c.Quote.Provider) {
		return fmt.Errorf("QUOTE_PROVIDER must be one of: %s", strings.Join(validQuoteProviders, ", "))
	}
	if c.Quote.Provider == "static" && c.Quote.StaticFile == "" {
		return fmt.Errorf("QUOTE_STATIC_FILE is required when QUOTE_PROVIDER=static")
	}

	if !contains(validSentimentSources, c.Sentiment.Source) {
		return fmt.Errorf("SENTIMENT_SOURCE must be one of: %s", strings.Join(validSentimentSources, ", "))
	}
	if c.Sentiment.Source == "headlines" && !strings.Contains(c.Sentiment.HeadlineURL, "{symbol}") {
		return fmt.Errorf("SENTIMENT_HEADLINE_URL must contain {symbol} when SENTIMENT_SOURCE=headlines")
	}

	if !contains(validUniverseSources, c.Universe.Source) {
		return fmt.Errorf("UNIVERSE_SOURCE must be one of: %s", strings.Join(validUniverseSources, ", "))
	}
	if c.Universe.Source == "file" && c.Universe.File == "" {
		return fmt.Errorf("UNIVERSE_FILE is required when UNIVERSE_SOURCE=file")
	}
	if c.Universe.Source == "database" && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when UNIVERSE_SOURCE=database")
	}

	if c.Valuation.BondYield <= 0 {
		return fmt.Errorf("VALUATION_BOND_YIELD must be positive")
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be at least 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, trimming blanks.
// An explicitly empty list ("," or " ") yields an empty, non-nil slice.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr, ok := os.LookupEnv(key)
	if !ok || valueStr == "" {
		out := make([]string, len(defaultValue))
		copy(out, defaultValue)
		return out
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
