package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

// DailyPnLStore implements domain.DailyPnLStore using PostgreSQL.
type DailyPnLStore struct {
	pool *pgxpool.Pool
}

// NewDailyPnLStore creates a DailyPnLStore backed by the given connection pool.
func NewDailyPnLStore(pool *pgxpool.Pool) *DailyPnLStore {
	return &DailyPnLStore{pool: pool}
}

// Upsert writes the P&L record for its date. Re-running a calculation for the
// same date replaces every field of the existing row; a second row is never
// created.
func (s *DailyPnLStore) Upsert(ctx context.Context, pnl domain.DailyPnL) error {
	details, err := json.Marshal(pnl.Details)
	if err != nil {
		return fmt.Errorf("postgres: marshal pnl details: %w", err)
	}

	const query = `
		INSERT INTO daily_profit_loss (
			date, total_realized_profit_loss, total_unrealized_profit_loss,
			total_fees_paid, portfolio_value, calculation_details
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date) DO UPDATE SET
			total_realized_profit_loss   = EXCLUDED.total_realized_profit_loss,
			total_unrealized_profit_loss = EXCLUDED.total_unrealized_profit_loss,
			total_fees_paid              = EXCLUDED.total_fees_paid,
			portfolio_value              = EXCLUDED.portfolio_value,
			calculation_details          = EXCLUDED.calculation_details,
			created_at                   = NOW()`

	day, _ := dayRange(pnl.Date)
	_, err = s.pool.Exec(ctx, query,
		day, pnl.RealizedPnL, pnl.UnrealizedPnL,
		pnl.FeesPaid, pnl.PortfolioValue, string(details),
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert daily pnl %s: %w", day.Format(time.DateOnly), err)
	}
	return nil
}

// GetByDate retrieves the P&L record for a date, or domain.ErrNotFound.
func (s *DailyPnLStore) GetByDate(ctx context.Context, date time.Time) (domain.DailyPnL, error) {
	const query = `
		SELECT date, total_realized_profit_loss, total_unrealized_profit_loss,
		       total_fees_paid, portfolio_value, calculation_details
		FROM daily_profit_loss
		WHERE date = $1`

	day, _ := dayRange(date)
	pnl, err := scanDailyPnL(s.pool.QueryRow(ctx, query, day))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DailyPnL{}, domain.ErrNotFound
		}
		return domain.DailyPnL{}, fmt.Errorf("postgres: get daily pnl %s: %w", day.Format(time.DateOnly), err)
	}
	return pnl, nil
}

// ListBefore returns records dated strictly before the cutoff, for archival.
func (s *DailyPnLStore) ListBefore(ctx context.Context, before time.Time) ([]domain.DailyPnL, error) {
	const query = `
		SELECT date, total_realized_profit_loss, total_unrealized_profit_loss,
		       total_fees_paid, portfolio_value, calculation_details
		FROM daily_profit_loss
		WHERE date < $1
		ORDER BY date`

	cutoff, _ := dayRange(before)
	rows, err := s.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("postgres: list daily pnl before %s: %w", cutoff.Format(time.DateOnly), err)
	}
	defer rows.Close()

	var records []domain.DailyPnL
	for rows.Next() {
		pnl, err := scanDailyPnL(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan daily pnl: %w", err)
		}
		records = append(records, pnl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate daily pnl: %w", err)
	}
	return records, nil
}

func scanDailyPnL(row pgx.Row) (domain.DailyPnL, error) {
	var pnl domain.DailyPnL
	var details []byte
	if err := row.Scan(
		&pnl.Date, &pnl.RealizedPnL, &pnl.UnrealizedPnL,
		&pnl.FeesPaid, &pnl.PortfolioValue, &details,
	); err != nil {
		return domain.DailyPnL{}, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &pnl.Details); err != nil {
			return domain.DailyPnL{}, fmt.Errorf("decode calculation details: %w", err)
		}
	}
	return pnl, nil
}
