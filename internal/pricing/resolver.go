// Package pricing resolves the most recent known closing price for a symbol,
// preferring the local time-series store and falling back to the external
// market-data provider.
package pricing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

// Resolver answers "what was this symbol last worth, as of this date".
// Lookup order: quote cache (optional), local candle store, external
// provider. Absence of a price is an expected outcome, never an error;
// callers apply their own documented fallback.
type Resolver struct {
	candles  domain.CandleStore
	external domain.MarketDataClient
	cache    domain.QuoteCache // nil when the cache is disabled
	logger   *slog.Logger
}

// NewResolver creates a Resolver. cache may be nil.
func NewResolver(candles domain.CandleStore, external domain.MarketDataClient, cache domain.QuoteCache, logger *slog.Logger) *Resolver {
	return &Resolver{
		candles:  candles,
		external: external,
		cache:    cache,
		logger:   logger.With(slog.String("component", "price_resolver")),
	}
}

// Resolve returns the most recent close for symbol at or before asOf. The
// boolean is false when no source has a price; that is a designed outcome,
// not an error. Resolve is read-only apart from refreshing the cache.
func (r *Resolver) Resolve(ctx context.Context, symbol string, market domain.Market, asOf time.Time) (decimal.Decimal, bool, error) {
	if r.cache != nil {
		price, err := r.cache.GetClose(ctx, symbol, asOf)
		if err == nil {
			return price, true, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			// Cache trouble degrades to a miss.
			r.logger.WarnContext(ctx, "quote cache read failed",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
		}
	}

	price, err := r.candles.LatestCloseOnOrBefore(ctx, symbol, asOf)
	if err == nil {
		r.storeInCache(ctx, symbol, asOf, price)
		return price, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return decimal.Zero, false, err
	}

	price, ok, err := r.external.FetchLatestClose(ctx, symbol, market)
	if err != nil {
		// The provider being down is recoverable at this layer: the
		// caller treats it the same as missing data and the next run
		// retries.
		r.logger.WarnContext(ctx, "external price fetch failed",
			slog.String("symbol", symbol),
			slog.String("market", string(market)),
			slog.String("error", err.Error()),
		)
		return decimal.Zero, false, nil
	}
	if !ok {
		return decimal.Zero, false, nil
	}

	r.storeInCache(ctx, symbol, asOf, price)
	return price, true, nil
}

func (r *Resolver) storeInCache(ctx context.Context, symbol string, asOf time.Time, price decimal.Decimal) {
	if r.cache == nil {
		return
	}
	if err := r.cache.SetClose(ctx, symbol, asOf, price); err != nil {
		r.logger.WarnContext(ctx, "quote cache write failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
	}
}
