// Package config defines the configuration for the stock analyzer trade
// tracking subsystem and provides validation helpers.
package config

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by STOCKAN_* environment
// variables.
type Config struct {
	Database   DatabaseConfig   `toml:"database"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	MarketData MarketDataConfig `toml:"market_data"`
	Fees       FeesConfig       `toml:"fees"`
	SellRules  SellRulesConfig  `toml:"sell_rules"`
	Notify     NotifyConfig     `toml:"notify"`
	LogLevel   string           `toml:"log_level"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds connection parameters for the optional quote cache.
// The cache is disabled when Addr is empty.
type RedisConfig struct {
	Addr            string `toml:"addr"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	PoolSize        int    `toml:"pool_size"`
	MaxRetries      int    `toml:"max_retries"`
	TLSEnabled      bool   `toml:"tls_enabled"`
	QuoteTTLMinutes int    `toml:"quote_ttl_minutes"`
}

// S3Config holds object storage parameters for the archive action. Archival
// is disabled when Bucket is empty.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	RetentionDays  int    `toml:"retention_days"`
}

// MarketDataConfig holds parameters for the external price provider used as
// a fallback when the local time-series store has no data.
type MarketDataConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RangeDays      int    `toml:"range_days"`
}

// FeesConfig is the transaction fee schedule. Rates are decimal strings so
// that fee arithmetic never passes through floating point.
type FeesConfig struct {
	CommissionRate string `toml:"commission_rate"`
	MinCommission  string `toml:"min_commission"`
	SellTaxRate    string `toml:"sell_tax_rate"`
}

// SellRulesConfig holds the exit thresholds as multipliers of the entry
// price, e.g. stop loss 0.90 and take profit 1.20.
type SellRulesConfig struct {
	StopLossBelow   string `toml:"stop_loss_below"`
	TakeProfitAbove string `toml:"take_profit_above"`
}

// NotifyConfig holds notification channel credentials. Channels without
// credentials are skipped.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns the built-in configuration, matching the fee schedule and
// exit thresholds the system has always used.
func Defaults() Config {
	return Config{
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "stock_analysis",
			SSLMode:       "disable",
			PoolMaxConns:  4,
			PoolMinConns:  1,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			QuoteTTLMinutes: 60,
		},
		S3: S3Config{
			RetentionDays: 365,
		},
		MarketData: MarketDataConfig{
			BaseURL:        "https://query1.finance.yahoo.com",
			TimeoutSeconds: 30,
			RangeDays:      5,
		},
		Fees: FeesConfig{
			CommissionRate: "0.0003",
			MinCommission:  "5.00",
			SellTaxRate:    "0.001",
		},
		SellRules: SellRulesConfig{
			StopLossBelow:   "0.90",
			TakeProfitAbove: "1.20",
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration for internal consistency. It is called
// after Load and before any dependency is constructed.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		if c.Database.Host == "" || c.Database.Database == "" || c.Database.User == "" {
			return fmt.Errorf("config: database requires dsn or host/database/user")
		}
	}

	rate, err := decimal.NewFromString(c.Fees.CommissionRate)
	if err != nil {
		return fmt.Errorf("config: fees.commission_rate: %w", err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("config: fees.commission_rate must not be negative")
	}
	minComm, err := decimal.NewFromString(c.Fees.MinCommission)
	if err != nil {
		return fmt.Errorf("config: fees.min_commission: %w", err)
	}
	if minComm.IsNegative() {
		return fmt.Errorf("config: fees.min_commission must not be negative")
	}
	tax, err := decimal.NewFromString(c.Fees.SellTaxRate)
	if err != nil {
		return fmt.Errorf("config: fees.sell_tax_rate: %w", err)
	}
	if tax.IsNegative() {
		return fmt.Errorf("config: fees.sell_tax_rate must not be negative")
	}

	stop, err := decimal.NewFromString(c.SellRules.StopLossBelow)
	if err != nil {
		return fmt.Errorf("config: sell_rules.stop_loss_below: %w", err)
	}
	take, err := decimal.NewFromString(c.SellRules.TakeProfitAbove)
	if err != nil {
		return fmt.Errorf("config: sell_rules.take_profit_above: %w", err)
	}
	// The trigger bands must stay disjoint: stop below entry, profit above.
	one := decimal.NewFromInt(1)
	if !stop.LessThan(one) {
		return fmt.Errorf("config: sell_rules.stop_loss_below must be below 1.0")
	}
	if !take.GreaterThan(one) {
		return fmt.Errorf("config: sell_rules.take_profit_above must be above 1.0")
	}

	if c.MarketData.RangeDays <= 0 {
		return fmt.Errorf("config: market_data.range_days must be positive")
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}

	return nil
}
