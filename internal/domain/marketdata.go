package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MarketDataClient fetches recent prices from an external provider. It is
// used only as a fallback when the local time-series store has no data.
type MarketDataClient interface {
	// FetchLatestClose returns the most recent non-null daily close for the
	// symbol. The boolean is false when the provider has no usable data;
	// that is not an error.
	FetchLatestClose(ctx context.Context, symbol string, market Market) (decimal.Decimal, bool, error)
}

// PriceResolver resolves the most recent known close for a symbol at or
// before a date. The boolean is false when no source has a price; absence is
// an expected outcome, never an error.
type PriceResolver interface {
	Resolve(ctx context.Context, symbol string, market Market, asOf time.Time) (decimal.Decimal, bool, error)
}

// QuoteCache caches resolved closing prices keyed by symbol and as-of date.
// A cache miss is reported as ErrNotFound.
type QuoteCache interface {
	GetClose(ctx context.Context, symbol string, asOf time.Time) (decimal.Decimal, error)
	SetClose(ctx context.Context, symbol string, asOf time.Time, price decimal.Decimal) error
}
