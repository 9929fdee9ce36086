package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

// QuoteCache implements domain.QuoteCache using plain Redis strings. Each
// resolved close is stored at key "quote:{symbol}:{YYYY-MM-DD}" as its exact
// decimal representation, so no precision is lost on the round trip.
type QuoteCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewQuoteCache creates a QuoteCache backed by the given Client. Entries
// expire after ttl; a zero ttl keeps them until evicted.
func NewQuoteCache(c *Client, ttl time.Duration) *QuoteCache {
	return &QuoteCache{rdb: c.Underlying(), ttl: ttl}
}

func quoteKey(symbol string, asOf time.Time) string {
	return "quote:" + symbol + ":" + asOf.UTC().Format(time.DateOnly)
}

// GetClose retrieves a cached close. It returns domain.ErrNotFound on a miss.
func (q *QuoteCache) GetClose(ctx context.Context, symbol string, asOf time.Time) (decimal.Decimal, error) {
	val, err := q.rdb.Get(ctx, quoteKey(symbol, asOf)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, domain.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("redis: get quote %s: %w", symbol, err)
	}

	price, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, fmt.Errorf("redis: parse cached quote %s: %w", symbol, err)
	}
	return price, nil
}

// SetClose stores a resolved close with the configured TTL.
func (q *QuoteCache) SetClose(ctx context.Context, symbol string, asOf time.Time, price decimal.Decimal) error {
	if err := q.rdb.Set(ctx, quoteKey(symbol, asOf), price.String(), q.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set quote %s: %w", symbol, err)
	}
	return nil
}
