package pnl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yulin9901/stock-analyzer/internal/domain"
	"github.com/yulin9901/stock-analyzer/internal/trading"
)

// SellRunner closes positions whose exit rules trigger. Satisfied by
// *trading.SellProcessor.
type SellRunner interface {
	Run(ctx context.Context, asOf time.Time) (trading.RunResult, error)
}

// Aggregator produces the daily P&L record: it drives the closing flow over
// all open positions, computes realized P&L for the date, marks the
// remaining open set to market, and upserts one row keyed by date. Running
// it twice for the same date replaces the row with identical values.
type Aggregator struct {
	sells    SellRunner
	realized *RealizedCalculator
	valuer   *Valuer
	store    domain.DailyPnLStore
	logger   *slog.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(sells SellRunner, realized *RealizedCalculator, valuer *Valuer, store domain.DailyPnLStore, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		sells:    sells,
		realized: realized,
		valuer:   valuer,
		store:    store,
		logger:   logger.With(slog.String("component", "daily_aggregator")),
	}
}

// Run executes the full daily flow for the target date and returns the
// persisted record. Monetary fields are rounded half-up to two decimal
// places at this boundary only; all upstream arithmetic stays unrounded.
func (a *Aggregator) Run(ctx context.Context, date time.Time) (domain.DailyPnL, error) {
	sellResult, err := a.sells.Run(ctx, date)
	if err != nil {
		return domain.DailyPnL{}, fmt.Errorf("pnl: sell flow: %w", err)
	}

	realized, err := a.realized.Calculate(ctx, date)
	if err != nil {
		return domain.DailyPnL{}, err
	}

	valuation, err := a.valuer.MarkToMarket(ctx, date)
	if err != nil {
		return domain.DailyPnL{}, err
	}

	details := make([]string, 0, len(realized.Details)+len(valuation.Details))
	details = append(details, realized.Details...)
	details = append(details, valuation.Details...)

	record := domain.DailyPnL{
		Date:           date,
		RealizedPnL:    realized.Total.Round(2),
		UnrealizedPnL:  valuation.Unrealized.Round(2),
		FeesPaid:       realized.Fees.Round(2),
		PortfolioValue: valuation.PortfolioValue.Round(2),
		Details:        details,
	}

	if err := a.store.Upsert(ctx, record); err != nil {
		return domain.DailyPnL{}, fmt.Errorf("pnl: store daily record: %w", err)
	}

	a.logger.InfoContext(ctx, "daily pnl stored",
		slog.String("date", date.Format(time.DateOnly)),
		slog.Int("sells_booked", sellResult.Closed),
		slog.Int("sells_failed", sellResult.Failed),
		slog.String("realized", record.RealizedPnL.String()),
		slog.String("unrealized", record.UnrealizedPnL.String()),
		slog.String("fees_paid", record.FeesPaid.String()),
		slog.String("portfolio_value", record.PortfolioValue.String()),
	)
	return record, nil
}
