package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	RedisURL      string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// BaseCurrency is the default reporting currency for new companies.
	BaseCurrency string

	// StaticFxRates is a fallback rate table (currency code to base-currency
	// rate) used when no stored exchange rate covers a currency.
	StaticFxRates map[string]decimal.Decimal

	// PostingTxTimeout bounds a single posting transaction.
	PostingTxTimeout time.Duration

	// BatchItemTimeout bounds one item of a batch run (e.g. one template).
	BatchItemTimeout time.Duration

	// RateLimit is a limiter rate string such as "100-M".
	RateLimit string
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("BASE_CURRENCY", "USD")
	v.SetDefault("STATIC_FX_RATES", "")
	v.SetDefault("POSTING_TX_TIMEOUT", "5s")
	v.SetDefault("BATCH_ITEM_TIMEOUT", "10s")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:      v.GetString("PGSQL_URL"),
		RedisURL:         v.GetString("REDIS_URL"),
		Port:             v.GetString("PORT"),
		IsProduction:     v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:    v.GetBool("ENABLE_DB_CHECK"),
		BaseCurrency:     v.GetString("BASE_CURRENCY"),
		PostingTxTimeout: v.GetDuration("POSTING_TX_TIMEOUT"),
		BatchItemTimeout: v.GetDuration("BATCH_ITEM_TIMEOUT"),
		RateLimit:        v.GetString("RATE_LIMIT"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("PGSQL_URL environment variable not set")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL environment variable not set")
	}

	rates, err := parseStaticRates(v.GetString("STATIC_FX_RATES"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATIC_FX_RATES: %w", err)
	}
	cfg.StaticFxRates = rates

	return cfg, nil
}

// parseStaticRates decodes a JSON object of currency code to rate, e.g.
// {"EUR":"1.08","GBP":"1.27"}.
func parseStaticRates(raw string) (map[string]decimal.Decimal, error) {
	if raw == "" {
		return map[string]decimal.Decimal{}, nil
	}
	var rates map[string]decimal.Decimal
	if err := json.Unmarshal([]byte(raw), &rates); err != nil {
		return nil, err
	}
	return rates, nil
}
