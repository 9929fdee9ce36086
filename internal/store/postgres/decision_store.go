package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

// DecisionStore implements domain.DecisionStore using PostgreSQL.
type DecisionStore struct {
	pool *pgxpool.Pool
}

// NewDecisionStore creates a DecisionStore backed by the given connection pool.
func NewDecisionStore(pool *pgxpool.Pool) *DecisionStore {
	return &DecisionStore{pool: pool}
}

// ListOpen returns every executed buy decision that has no SELL trade
// referencing it, i.e. the set of currently open positions.
func (s *DecisionStore) ListOpen(ctx context.Context) ([]domain.Position, error) {
	const query = `
		SELECT d.id, d.stock_code, COALESCE(d.stock_name, ''), d.market,
		       d.executed_buy_price, d.executed_quantity,
		       d.executed_timestamp, d.daily_summary_id
		FROM stock_buy_decisions d
		LEFT JOIN trades t
		       ON t.related_buy_decision_id = d.id
		      AND t.transaction_type = 'SELL'
		WHERE d.is_executed = TRUE AND t.id IS NULL
		ORDER BY d.executed_timestamp, d.id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list open positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		var p domain.Position
		var market string
		if err := rows.Scan(
			&p.DecisionID, &p.Symbol, &p.DisplayName, &market,
			&p.EntryPrice, &p.Quantity, &p.OpenedAt, &p.DailySummaryID,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan open position: %w", err)
		}
		p.Market = domain.Market(market)
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate open positions: %w", err)
	}
	return positions, nil
}

// GetByID retrieves a single buy decision.
func (s *DecisionStore) GetByID(ctx context.Context, id int64) (domain.Decision, error) {
	const query = `
		SELECT id, stock_code, COALESCE(stock_name, ''), market, executed_buy_price,
		       executed_quantity, executed_timestamp, is_executed,
		       daily_summary_id
		FROM stock_buy_decisions
		WHERE id = $1`

	var d domain.Decision
	var market string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Symbol, &d.DisplayName, &market,
		&d.ExecutedPrice, &d.ExecutedQuantity, &d.ExecutedAt,
		&d.Executed, &d.DailySummaryID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Decision{}, domain.ErrNotFound
		}
		return domain.Decision{}, fmt.Errorf("postgres: get decision %d: %w", id, err)
	}
	d.Market = domain.Market(market)
	return d, nil
}
