package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yulin9901/stock-analyzer/internal/notify"
)

// runSellDecision evaluates every open position against the exit rules and
// books SELL trades for the ones that trigger. Per-position failures are
// counted, not fatal.
func (a *App) runSellDecision(ctx context.Context, deps *Dependencies, date time.Time) (Result, error) {
	run, err := deps.Sells.Run(ctx, date)
	if err != nil {
		return Result{}, fmt.Errorf("app: sell decision: %w", err)
	}

	for _, trade := range run.Closes {
		msg := fmt.Sprintf("%s x%d @ %s (%s)",
			trade.Symbol, trade.Quantity, trade.Price.StringFixed(2), trade.CloseReason)
		if err := deps.Notifier.Notify(ctx, notify.EventPositionClosed, "Position closed", msg); err != nil {
			a.logger.WarnContext(ctx, "close notification failed", slog.String("error", err.Error()))
		}
	}

	summary := fmt.Sprintf("evaluated %d positions: %d closed, %d held, %d skipped, %d failed",
		run.Evaluated, run.Closed, run.Held, run.Skipped, run.Failed)
	return Result{OK: run.Failed == 0, Summary: summary}, nil
}

// runCalcPnL computes and stores the daily summary for the date. The sell
// flow runs first so the summary reflects today's closes.
func (a *App) runCalcPnL(ctx context.Context, deps *Dependencies, date time.Time) (Result, error) {
	day, err := deps.PnL.Run(ctx, date)
	if err != nil {
		return Result{}, fmt.Errorf("app: calc pnl: %w", err)
	}

	summary := fmt.Sprintf("realized %s, unrealized %s, fees %s, portfolio value %s",
		day.RealizedPnL.StringFixed(2),
		day.UnrealizedPnL.StringFixed(2),
		day.FeesPaid.StringFixed(2),
		day.PortfolioValue.StringFixed(2),
	)

	var msg strings.Builder
	fmt.Fprintf(&msg, "Daily P&L for %s\n%s", date.Format("2006-01-02"), summary)
	for _, line := range day.Details {
		msg.WriteString("\n")
		msg.WriteString(line)
	}
	if err := deps.Notifier.Notify(ctx, notify.EventDailyPnL, "Daily P&L", msg.String()); err != nil {
		a.logger.WarnContext(ctx, "daily pnl notification failed", slog.String("error", err.Error()))
	}

	return Result{OK: true, Summary: summary}, nil
}

// runArchive uploads trades and daily summaries older than the retention
// window to object storage.
func (a *App) runArchive(ctx context.Context, deps *Dependencies, date time.Time) (Result, error) {
	if deps.Archiver == nil {
		return Result{}, fmt.Errorf("app: archive: no s3 bucket configured")
	}

	cutoff := date.AddDate(0, 0, -a.cfg.S3.RetentionDays)

	trades, err := deps.Archiver.ArchiveTrades(ctx, cutoff)
	if err != nil {
		return Result{}, fmt.Errorf("app: archive: %w", err)
	}
	summaries, err := deps.Archiver.ArchiveDailyPnL(ctx, cutoff)
	if err != nil {
		return Result{}, fmt.Errorf("app: archive: %w", err)
	}

	summary := fmt.Sprintf("archived %d trades and %d daily summaries before %s",
		trades, summaries, cutoff.Format("2006-01-02"))
	return Result{OK: true, Summary: summary}, nil
}
