package pnl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

// ValuationResult is the unrealized half of the daily report: every open
// position marked to the latest resolvable price.
type ValuationResult struct {
	Unrealized     decimal.Decimal
	PortfolioValue decimal.Decimal
	MissingPrices  int
	Details        []string
}

// Valuer marks open positions to market. Positions without a resolvable
// price are valued at cost and contribute nothing to unrealized P&L; that is
// a designed degradation, flagged in the detail lines, never an error.
type Valuer struct {
	positions domain.DecisionStore
	prices    domain.PriceResolver
	logger    *slog.Logger
}

// NewValuer creates a Valuer.
func NewValuer(positions domain.DecisionStore, prices domain.PriceResolver, logger *slog.Logger) *Valuer {
	return &Valuer{
		positions: positions,
		prices:    prices,
		logger:    logger.With(slog.String("component", "valuation")),
	}
}

// MarkToMarket values every currently open position, using asOf as the
// upper bound for price lookups. The open set itself is point-in-time, not
// date-filtered.
func (v *Valuer) MarkToMarket(ctx context.Context, asOf time.Time) (ValuationResult, error) {
	result := ValuationResult{
		Unrealized:     decimal.Zero,
		PortfolioValue: decimal.Zero,
	}

	open, err := v.positions.ListOpen(ctx)
	if err != nil {
		return result, fmt.Errorf("pnl: list open positions: %w", err)
	}

	for _, pos := range open {
		costValue := pos.CostValue()

		price, ok, err := v.prices.Resolve(ctx, pos.Symbol, pos.Market, asOf)
		if err != nil {
			return result, fmt.Errorf("pnl: resolve price for %s: %w", pos.Symbol, err)
		}
		if !ok {
			// Value at cost; zero unrealized contribution.
			result.PortfolioValue = result.PortfolioValue.Add(costValue)
			result.MissingPrices++
			result.Details = append(result.Details,
				fmt.Sprintf("Held %s: no current price, valued at cost %s", pos.Symbol, costValue.StringFixed(2)))
			v.logger.WarnContext(ctx, "no price for open position, valuing at cost",
				slog.Int64("decision_id", pos.DecisionID),
				slog.String("symbol", pos.Symbol),
			)
			continue
		}

		currentValue := price.Mul(decimal.NewFromInt(pos.Quantity))
		unrealized := currentValue.Sub(costValue)
		result.Unrealized = result.Unrealized.Add(unrealized)
		result.PortfolioValue = result.PortfolioValue.Add(currentValue)
		result.Details = append(result.Details,
			fmt.Sprintf("Held %s: unrealized P&L %s, value %s",
				pos.Symbol, unrealized.StringFixed(2), currentValue.StringFixed(2)))
	}

	v.logger.InfoContext(ctx, "open positions valued",
		slog.Int("positions", len(open)),
		slog.Int("missing_prices", result.MissingPrices),
		slog.String("unrealized", result.Unrealized.String()),
		slog.String("portfolio_value", result.PortfolioValue.String()),
	)
	return result, nil
}
