package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	s3blob "github.com/yulin9901/stock-analyzer/internal/blob/s3"
	"github.com/yulin9901/stock-analyzer/internal/cache/redis"
	"github.com/yulin9901/stock-analyzer/internal/config"
	"github.com/yulin9901/stock-analyzer/internal/domain"
	"github.com/yulin9901/stock-analyzer/internal/marketdata"
	"github.com/yulin9901/stock-analyzer/internal/notify"
	"github.com/yulin9901/stock-analyzer/internal/pnl"
	"github.com/yulin9901/stock-analyzer/internal/pricing"
	"github.com/yulin9901/stock-analyzer/internal/store/postgres"
	"github.com/yulin9901/stock-analyzer/internal/trading"
)

// Dependencies bundles everything the actions need. It is constructed by Wire
// and torn down by the returned cleanup function.
type Dependencies struct {
	Decisions domain.DecisionStore
	Trades    domain.TradeStore
	Candles   domain.CandleStore
	DailyPnL  domain.DailyPnLStore

	Resolver *pricing.Resolver
	Sells    *trading.SellProcessor
	PnL      *pnl.Aggregator

	Notifier *notify.Notifier

	// Archiver is nil when no S3 bucket is configured.
	Archiver *s3blob.Archiver
}

// Wire constructs all concrete dependencies from the configuration. The
// returned cleanup function releases connections in reverse order and must be
// called on shutdown. The configuration must already be validated.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.PoolMaxConns,
		MinConns: cfg.Database.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Database.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.Decisions = postgres.NewDecisionStore(pool)
	deps.Trades = postgres.NewTradeStore(pool)
	deps.Candles = postgres.NewCandleStore(pool)
	deps.DailyPnL = postgres.NewDailyPnLStore(pool)

	// --- Redis quote cache (optional) ---
	var quoteCache domain.QuoteCache
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		ttl := time.Duration(cfg.Redis.QuoteTTLMinutes) * time.Minute
		quoteCache = redis.NewQuoteCache(redisClient, ttl)
	}

	// --- Market data + price resolution ---
	yahoo := marketdata.NewYahooClient(marketdata.Config{
		BaseURL:   cfg.MarketData.BaseURL,
		Timeout:   time.Duration(cfg.MarketData.TimeoutSeconds) * time.Second,
		RangeDays: cfg.MarketData.RangeDays,
	})
	deps.Resolver = pricing.NewResolver(deps.Candles, yahoo, quoteCache, logger)

	// --- Trading flow ---
	// Validate has already checked these strings parse.
	fees := trading.FeeSchedule{
		CommissionRate: decimal.RequireFromString(cfg.Fees.CommissionRate),
		MinCommission:  decimal.RequireFromString(cfg.Fees.MinCommission),
		SellTaxRate:    decimal.RequireFromString(cfg.Fees.SellTaxRate),
	}
	evaluator := trading.NewEvaluator(trading.SellRules{
		StopLossBelow:   decimal.RequireFromString(cfg.SellRules.StopLossBelow),
		TakeProfitAbove: decimal.RequireFromString(cfg.SellRules.TakeProfitAbove),
	})
	recorder := trading.NewRecorder(deps.Trades, fees, logger)
	deps.Sells = trading.NewSellProcessor(deps.Decisions, deps.Resolver, evaluator, recorder, logger)

	// --- P&L flow ---
	realized := pnl.NewRealizedCalculator(deps.Trades, logger)
	valuer := pnl.NewValuer(deps.Decisions, deps.Resolver, logger)
	deps.PnL = pnl.NewAggregator(deps.Sells, realized, valuer, deps.DailyPnL, logger)

	// --- S3 archive (optional) ---
	if cfg.S3.Bucket != "" {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		writer := s3blob.NewWriter(s3Client)
		deps.Archiver = s3blob.NewArchiver(writer, deps.Trades, deps.DailyPnL, logger)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
