// Package pnl computes realized and unrealized profit-and-loss and merges
// them into the idempotent per-date record.
package pnl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

// RealizedResult is the realized half of the daily report.
type RealizedResult struct {
	Total decimal.Decimal
	// Fees covers the sell-side fees of today's closes, the entry fees
	// attributed to them, and the fees of today's still-open buys.
	Fees    decimal.Decimal
	Details []string
}

// LotPnL computes the realized P&L for one closed lot and the total fees
// attributable to it.
//
// Entry fees are allocated proportionally to the sold quantity. With the
// current full-quantity close model the allocation is always the whole
// entry fee total; the proportional form is kept so a partial-close variant
// would not change the arithmetic.
func LotPnL(lot domain.ClosedLot) (pnl, fees decimal.Decimal) {
	qty := decimal.NewFromInt(lot.Quantity)

	sellValue := lot.SellPrice.Mul(qty)
	sellFees := lot.SellCommission.Add(lot.SellTransferTax)

	entryFees := lot.EntryFees
	if lot.EntryQuantity > 0 && lot.Quantity != lot.EntryQuantity {
		entryFees = lot.EntryFees.Mul(qty).Div(decimal.NewFromInt(lot.EntryQuantity))
	}

	costBasis := lot.EntryPrice.Mul(qty).Add(entryFees)
	pnl = sellValue.Sub(sellFees).Sub(costBasis)
	fees = sellFees.Add(entryFees)
	return pnl, fees
}

// RealizedCalculator sums realized P&L over the closes of one date.
type RealizedCalculator struct {
	trades domain.TradeStore
	logger *slog.Logger
}

// NewRealizedCalculator creates a RealizedCalculator.
func NewRealizedCalculator(trades domain.TradeStore, logger *slog.Logger) *RealizedCalculator {
	return &RealizedCalculator{
		trades: trades,
		logger: logger.With(slog.String("component", "realized_pnl")),
	}
}

// Calculate computes realized P&L for every position closed on the target
// date, plus the fees paid that date: sell-side fees, attributed entry fees,
// and the entry fees of same-day buys that remain open.
func (c *RealizedCalculator) Calculate(ctx context.Context, date time.Time) (RealizedResult, error) {
	result := RealizedResult{Total: decimal.Zero, Fees: decimal.Zero}

	lots, err := c.trades.ListClosedLots(ctx, date)
	if err != nil {
		return result, fmt.Errorf("pnl: closed lots for %s: %w", date.Format(time.DateOnly), err)
	}

	for _, lot := range lots {
		pnl, fees := LotPnL(lot)
		result.Total = result.Total.Add(pnl)
		result.Fees = result.Fees.Add(fees)
		result.Details = append(result.Details,
			fmt.Sprintf("Sold %s: realized P&L %s", lot.Symbol, pnl.StringFixed(2)))
	}

	// Fees on buys made today count as paid today even though those
	// positions are still open.
	openBuyFees, err := c.trades.SumUnmatchedBuyFees(ctx, date)
	if err != nil {
		return result, fmt.Errorf("pnl: same-day buy fees for %s: %w", date.Format(time.DateOnly), err)
	}
	result.Fees = result.Fees.Add(openBuyFees)

	c.logger.InfoContext(ctx, "realized pnl calculated",
		slog.String("date", date.Format(time.DateOnly)),
		slog.Int("closed_lots", len(lots)),
		slog.String("total", result.Total.String()),
		slog.String("fees", result.Fees.String()),
	)
	return result, nil
}
