package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DecisionStore reads executed buy decisions.
type DecisionStore interface {
	// ListOpen returns every open position: an executed decision with no
	// SELL trade referencing it. The result reflects trades committed
	// before the call; within one batch run at most one closing trade is
	// ever created per decision, so a query at the start of the run is
	// sufficient.
	ListOpen(ctx context.Context) ([]Position, error)
	GetByID(ctx context.Context, id int64) (Decision, error)
}

// TradeStore persists the append-only trade ledger.
type TradeStore interface {
	Insert(ctx context.Context, trade Trade) (int64, error)
	// ListClosedLots returns, for every SELL trade occurring on the given
	// date, the sell terms joined with the entry terms of the closed
	// decision and the summed BUY-side fees for that decision.
	ListClosedLots(ctx context.Context, date time.Time) ([]ClosedLot, error)
	// SumUnmatchedBuyFees sums the fees of BUY trades on the given date
	// whose decision was not also sold that date. Those fees count as paid
	// even though the positions remain open.
	SumUnmatchedBuyFees(ctx context.Context, date time.Time) (decimal.Decimal, error)
	// ListBefore returns trades occurring strictly before the cutoff, for
	// archival.
	ListBefore(ctx context.Context, before time.Time) ([]Trade, error)
}

// CandleStore reads the local daily time-series.
type CandleStore interface {
	// LatestCloseOnOrBefore returns the most recent close for the symbol
	// at or before the given date, or ErrNotFound when the store holds no
	// bar in range.
	LatestCloseOnOrBefore(ctx context.Context, symbol string, asOf time.Time) (decimal.Decimal, error)
}

// DailyPnLStore persists per-date P&L records keyed by date.
type DailyPnLStore interface {
	// Upsert writes the record for its date, replacing every field of any
	// existing row for that date.
	Upsert(ctx context.Context, pnl DailyPnL) error
	GetByDate(ctx context.Context, date time.Time) (DailyPnL, error)
	// ListBefore returns records dated strictly before the cutoff, for
	// archival.
	ListBefore(ctx context.Context, before time.Time) ([]DailyPnL, error)
}
