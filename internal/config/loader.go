package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies STOCKAN_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load. A missing file is not an
// error: defaults plus environment overrides apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known STOCKAN_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Database ──
	setStr(&cfg.Database.DSN, "STOCKAN_DB_DSN")
	setStr(&cfg.Database.Host, "STOCKAN_DB_HOST")
	setInt(&cfg.Database.Port, "STOCKAN_DB_PORT")
	setStr(&cfg.Database.Database, "STOCKAN_DB_NAME")
	setStr(&cfg.Database.User, "STOCKAN_DB_USER")
	setStr(&cfg.Database.Password, "STOCKAN_DB_PASSWORD")
	setStr(&cfg.Database.SSLMode, "STOCKAN_DB_SSLMODE")
	setInt(&cfg.Database.PoolMaxConns, "STOCKAN_DB_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "STOCKAN_DB_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "STOCKAN_DB_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "STOCKAN_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "STOCKAN_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "STOCKAN_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "STOCKAN_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "STOCKAN_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "STOCKAN_REDIS_TLS_ENABLED")
	setInt(&cfg.Redis.QuoteTTLMinutes, "STOCKAN_REDIS_QUOTE_TTL_MINUTES")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "STOCKAN_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "STOCKAN_S3_REGION")
	setStr(&cfg.S3.Bucket, "STOCKAN_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "STOCKAN_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "STOCKAN_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "STOCKAN_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "STOCKAN_S3_FORCE_PATH_STYLE")
	setInt(&cfg.S3.RetentionDays, "STOCKAN_S3_RETENTION_DAYS")

	// ── Market data ──
	setStr(&cfg.MarketData.BaseURL, "STOCKAN_MARKET_DATA_BASE_URL")
	setInt(&cfg.MarketData.TimeoutSeconds, "STOCKAN_MARKET_DATA_TIMEOUT_SECONDS")
	setInt(&cfg.MarketData.RangeDays, "STOCKAN_MARKET_DATA_RANGE_DAYS")

	// ── Fees & sell rules ──
	setStr(&cfg.Fees.CommissionRate, "STOCKAN_FEES_COMMISSION_RATE")
	setStr(&cfg.Fees.MinCommission, "STOCKAN_FEES_MIN_COMMISSION")
	setStr(&cfg.Fees.SellTaxRate, "STOCKAN_FEES_SELL_TAX_RATE")
	setStr(&cfg.SellRules.StopLossBelow, "STOCKAN_SELL_RULES_STOP_LOSS_BELOW")
	setStr(&cfg.SellRules.TakeProfitAbove, "STOCKAN_SELL_RULES_TAKE_PROFIT_ABOVE")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "STOCKAN_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "STOCKAN_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "STOCKAN_NOTIFY_DISCORD_WEBHOOK_URL")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "STOCKAN_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
