package trading

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

// RunResult summarizes one pass over the open positions.
type RunResult struct {
	RunID     string
	Evaluated int
	Closed    int
	Held      int
	Skipped   int
	Failed    int
	// Closes are the trades booked during the run.
	Closes []domain.Trade
}

// SellProcessor walks every open position once, resolves its latest price,
// applies the sell rules, and books a closing trade where they trigger.
// Positions are processed strictly sequentially: each close is committed
// before the next position is considered, so a run can never double-close.
type SellProcessor struct {
	positions domain.DecisionStore
	prices    domain.PriceResolver
	evaluator Evaluator
	recorder  *Recorder
	logger    *slog.Logger
}

// NewSellProcessor creates a SellProcessor.
func NewSellProcessor(positions domain.DecisionStore, prices domain.PriceResolver, evaluator Evaluator, recorder *Recorder, logger *slog.Logger) *SellProcessor {
	return &SellProcessor{
		positions: positions,
		prices:    prices,
		evaluator: evaluator,
		recorder:  recorder,
		logger:    logger.With(slog.String("component", "sell_processor")),
	}
}

// Run evaluates all open positions as of the given date. Per-position
// trouble (missing price, failed write) is logged and counted, never fatal;
// only the inability to list open positions aborts the run.
func (p *SellProcessor) Run(ctx context.Context, asOf time.Time) (RunResult, error) {
	result := RunResult{RunID: uuid.NewString()}
	logger := p.logger.With(slog.String("run_id", result.RunID))

	open, err := p.positions.ListOpen(ctx)
	if err != nil {
		return result, fmt.Errorf("trading: list open positions: %w", err)
	}
	logger.InfoContext(ctx, "evaluating open positions", slog.Int("count", len(open)))

	for _, pos := range open {
		result.Evaluated++

		var latest *decimal.Decimal
		price, ok, err := p.prices.Resolve(ctx, pos.Symbol, pos.Market, asOf)
		if err != nil {
			logger.ErrorContext(ctx, "price resolution failed",
				slog.Int64("decision_id", pos.DecisionID),
				slog.String("symbol", pos.Symbol),
				slog.String("error", err.Error()),
			)
			result.Failed++
			continue
		}
		if ok {
			latest = &price
		}

		verdict := p.evaluator.Evaluate(pos, latest)
		switch verdict.Action {
		case ActionSkip:
			logger.WarnContext(ctx, "skipping position, no price data",
				slog.Int64("decision_id", pos.DecisionID),
				slog.String("symbol", pos.Symbol),
			)
			result.Skipped++

		case ActionHold:
			logger.DebugContext(ctx, "holding position",
				slog.Int64("decision_id", pos.DecisionID),
				slog.String("symbol", pos.Symbol),
				slog.String("reason", verdict.Reason),
			)
			result.Held++

		case ActionClose:
			trade, err := p.recorder.RecordClose(ctx, pos, verdict.Price, verdict.Reason)
			if err != nil {
				// Isolated failure: the remaining positions still
				// get their evaluation and their writes.
				logger.ErrorContext(ctx, "failed to record close",
					slog.Int64("decision_id", pos.DecisionID),
					slog.String("symbol", pos.Symbol),
					slog.String("error", err.Error()),
				)
				result.Failed++
				continue
			}
			result.Closed++
			result.Closes = append(result.Closes, trade)
		}
	}

	logger.InfoContext(ctx, "sell run finished",
		slog.Int("evaluated", result.Evaluated),
		slog.Int("closed", result.Closed),
		slog.Int("held", result.Held),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
	)
	return result, nil
}
