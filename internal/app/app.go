// Package app wires the stores, market data clients, and trading flows
// together and runs one action per invocation: evaluating open positions for
// exits, computing the daily P&L summary, or archiving old records.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yulin9901/stock-analyzer/internal/config"
)

// Actions accepted by Run.
const (
	ActionSellDecision = "make_sell_decision"
	ActionCalcPnL      = "calc_pnl"
	ActionArchive      = "archive"
)

// App is the root application object.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates an App from a validated configuration.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Result reports the outcome of one action run.
type Result struct {
	// OK is false when the action ran but did not fully succeed, e.g. some
	// positions failed to book. Connectivity failures surface as errors
	// from Run instead.
	OK      bool
	Summary string
}

// Run wires dependencies and executes the named action for the given
// trade date. It returns an error only when the action cannot start at all:
// an unknown action, or stores that cannot be reached.
func (a *App) Run(ctx context.Context, action string, date time.Time) (Result, error) {
	a.logger.InfoContext(ctx, "starting action",
		slog.String("action", action),
		slog.String("date", date.Format("2006-01-02")),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return Result{}, err
	}
	defer cleanup()

	switch action {
	case ActionSellDecision:
		return a.runSellDecision(ctx, deps, date)
	case ActionCalcPnL:
		return a.runCalcPnL(ctx, deps, date)
	case ActionArchive:
		return a.runArchive(ctx, deps, date)
	default:
		return Result{}, fmt.Errorf("app: unsupported action %q", action)
	}
}
