package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

// TradeStore implements domain.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *pgxpool.Pool
}

// NewTradeStore creates a TradeStore backed by the given connection pool.
func NewTradeStore(pool *pgxpool.Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Insert appends one trade to the ledger and returns its assigned id. Each
// insert is its own transaction: a failed write for one position never
// blocks writes for the others in the same batch run.
func (s *TradeStore) Insert(ctx context.Context, t domain.Trade) (int64, error) {
	const query = `
		INSERT INTO trades (
			stock_code, stock_name, market, transaction_type,
			transaction_time, quantity, price,
			commission_fee, stamp_duty, other_fees, total_amount,
			related_buy_decision_id, sell_reason
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10, $11,
			$12, $13
		) RETURNING id`

	var id int64
	err := s.pool.QueryRow(ctx, query,
		t.Symbol, t.DisplayName, string(t.Market), string(t.Side),
		t.OccurredAt, t.Quantity, t.Price,
		t.Commission, t.TransferTax, t.OtherFees, t.NetAmount,
		t.DecisionID, t.CloseReason,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert %s trade %s: %w", t.Side, t.Symbol, err)
	}
	return id, nil
}

// ListClosedLots returns the realized-P&L view for the given date: every SELL
// trade occurring that day joined with the entry terms of the decision it
// closed and the total fees paid on that decision's BUY trades.
func (s *TradeStore) ListClosedLots(ctx context.Context, date time.Time) ([]domain.ClosedLot, error) {
	start, end := dayRange(date)

	const query = `
		SELECT sell.id, sell.stock_code, sell.quantity, sell.price,
		       sell.commission_fee, sell.stamp_duty,
		       d.executed_buy_price, d.executed_quantity,
		       COALESCE((
		           SELECT SUM(buy.commission_fee + buy.stamp_duty + buy.other_fees)
		           FROM trades buy
		           WHERE buy.related_buy_decision_id = d.id
		             AND buy.transaction_type = 'BUY'
		       ), 0) AS entry_fees
		FROM trades sell
		JOIN stock_buy_decisions d ON sell.related_buy_decision_id = d.id
		WHERE sell.transaction_type = 'SELL'
		  AND sell.transaction_time >= $1
		  AND sell.transaction_time < $2
		ORDER BY sell.transaction_time, sell.id`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("postgres: list closed lots: %w", err)
	}
	defer rows.Close()

	var lots []domain.ClosedLot
	for rows.Next() {
		var lot domain.ClosedLot
		if err := rows.Scan(
			&lot.TradeID, &lot.Symbol, &lot.Quantity, &lot.SellPrice,
			&lot.SellCommission, &lot.SellTransferTax,
			&lot.EntryPrice, &lot.EntryQuantity, &lot.EntryFees,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan closed lot: %w", err)
		}
		lots = append(lots, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate closed lots: %w", err)
	}
	return lots, nil
}

// SumUnmatchedBuyFees sums commission, transfer tax, and other fees on BUY
// trades made on the given date whose decision was not also sold that date.
// Entry fees are recognized as paid on the day of the buy even though the
// position is still open.
func (s *TradeStore) SumUnmatchedBuyFees(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	start, end := dayRange(date)

	const query = `
		SELECT COALESCE(SUM(buy.commission_fee + buy.stamp_duty + buy.other_fees), 0)
		FROM trades buy
		WHERE buy.transaction_type = 'BUY'
		  AND buy.transaction_time >= $1
		  AND buy.transaction_time < $2
		  AND (buy.related_buy_decision_id IS NULL
		       OR buy.related_buy_decision_id NOT IN (
		           SELECT sell.related_buy_decision_id
		           FROM trades sell
		           WHERE sell.transaction_type = 'SELL'
		             AND sell.transaction_time >= $1
		             AND sell.transaction_time < $2
		             AND sell.related_buy_decision_id IS NOT NULL
		       ))`

	var sum decimal.Decimal
	if err := s.pool.QueryRow(ctx, query, start, end).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("postgres: sum unmatched buy fees: %w", err)
	}
	return sum, nil
}

// ListBefore returns all trades occurring strictly before the cutoff,
// ordered by time. Used by the archiver.
func (s *TradeStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Trade, error) {
	const query = `
		SELECT id, stock_code, COALESCE(stock_name, ''), market,
		       transaction_type, transaction_time, quantity, price,
		       commission_fee, stamp_duty, other_fees, total_amount,
		       related_buy_decision_id, COALESCE(sell_reason, '')
		FROM trades
		WHERE transaction_time < $1
		ORDER BY transaction_time, id`

	rows, err := s.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trades before %s: %w", before.Format(time.DateOnly), err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var t domain.Trade
		var market, side string
		if err := rows.Scan(
			&t.ID, &t.Symbol, &t.DisplayName, &market, &side,
			&t.OccurredAt, &t.Quantity, &t.Price,
			&t.Commission, &t.TransferTax, &t.OtherFees, &t.NetAmount,
			&t.DecisionID, &t.CloseReason,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan trade: %w", err)
		}
		t.Market = domain.Market(market)
		t.Side = domain.TradeSide(side)
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate trades: %w", err)
	}
	return trades, nil
}
