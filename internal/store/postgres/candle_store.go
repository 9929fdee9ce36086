package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

// CandleStore implements domain.CandleStore over the kline_data table, which
// is populated by the external collection process.
type CandleStore struct {
	pool *pgxpool.Pool
}

// NewCandleStore creates a CandleStore backed by the given connection pool.
func NewCandleStore(pool *pgxpool.Pool) *CandleStore {
	return &CandleStore{pool: pool}
}

// LatestCloseOnOrBefore returns the most recent non-null close for the symbol
// on or before the given date. It returns domain.ErrNotFound when the store
// holds no bar in range.
func (s *CandleStore) LatestCloseOnOrBefore(ctx context.Context, symbol string, asOf time.Time) (decimal.Decimal, error) {
	_, end := dayRange(asOf)

	const query = `
		SELECT close_price
		FROM kline_data
		WHERE stock_code = $1
		  AND timestamp < $2
		  AND close_price IS NOT NULL
		ORDER BY timestamp DESC
		LIMIT 1`

	var close decimal.Decimal
	err := s.pool.QueryRow(ctx, query, symbol, end).Scan(&close)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("postgres: latest close for %s: %w", symbol, err)
	}
	return close, nil
}
