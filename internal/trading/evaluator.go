// Package trading implements sell evaluation, the transaction fee model, and
// the batch that closes positions.
package trading

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

// Action is the outcome of evaluating one position.
type Action string

const (
	// ActionHold keeps the position open.
	ActionHold Action = "hold"
	// ActionClose books a closing SELL at the verdict price.
	ActionClose Action = "close"
	// ActionSkip means no price could be resolved; the position is left
	// untouched and re-evaluated on the next run.
	ActionSkip Action = "skip"
)

// Verdict is the result of evaluating a position against the sell rules.
type Verdict struct {
	Action Action
	Price  decimal.Decimal
	Reason string
}

// SellRules holds the exit thresholds as multipliers of the entry price.
// The two trigger bands are disjoint by construction (stop below 1.0, take
// profit above 1.0); Config.Validate enforces that.
type SellRules struct {
	// StopLossBelow closes when latest < entry * StopLossBelow.
	StopLossBelow decimal.Decimal
	// TakeProfitAbove closes when latest > entry * TakeProfitAbove.
	TakeProfitAbove decimal.Decimal
}

// Evaluator applies the sell rules to positions. It is a pure value with no
// dependencies, so alternate rule sets are trivial to test.
type Evaluator struct {
	rules SellRules
}

// NewEvaluator creates an Evaluator with the given rules.
func NewEvaluator(rules SellRules) Evaluator {
	return Evaluator{rules: rules}
}

var oneHundred = decimal.NewFromInt(100)

// Evaluate maps a position and its latest price to a verdict. A nil latest
// price yields ActionSkip: missing data must never close a position.
// Stop-loss is checked before take-profit; the bands never overlap, so the
// order is fixed purely for reproducibility.
func (e Evaluator) Evaluate(pos domain.Position, latest *decimal.Decimal) Verdict {
	if latest == nil {
		return Verdict{
			Action: ActionSkip,
			Reason: "insufficient data: no price available for evaluation",
		}
	}

	stopAt := pos.EntryPrice.Mul(e.rules.StopLossBelow)
	if latest.LessThan(stopAt) {
		pct := decimal.NewFromInt(1).Sub(e.rules.StopLossBelow).Mul(oneHundred)
		return Verdict{
			Action: ActionClose,
			Price:  *latest,
			Reason: fmt.Sprintf("stop-loss: price %s is more than %s%% below entry %s",
				latest, pct, pos.EntryPrice),
		}
	}

	takeAt := pos.EntryPrice.Mul(e.rules.TakeProfitAbove)
	if latest.GreaterThan(takeAt) {
		pct := e.rules.TakeProfitAbove.Sub(decimal.NewFromInt(1)).Mul(oneHundred)
		return Verdict{
			Action: ActionClose,
			Price:  *latest,
			Reason: fmt.Sprintf("take-profit: price %s is more than %s%% above entry %s",
				latest, pct, pos.EntryPrice),
		}
	}

	return Verdict{
		Action: ActionHold,
		Price:  *latest,
		Reason: "no exit condition met",
	}
}
