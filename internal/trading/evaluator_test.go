package trading

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

func testRules() SellRules {
	return SellRules{
		StopLossBelow:   decimal.RequireFromString("0.90"),
		TakeProfitAbove: decimal.RequireFromString("1.20"),
	}
}

func TestEvaluate(t *testing.T) {
	eval := NewEvaluator(testRules())
	pos := domain.Position{
		DecisionID: 1,
		Symbol:     "600519",
		Market:     domain.MarketShanghai,
		EntryPrice: decimal.RequireFromString("100"),
		Quantity:   100,
	}

	tests := []struct {
		name         string
		latest       string
		wantAction   Action
		reasonPrefix string
	}{
		{"deep loss closes", "89", ActionClose, "stop-loss"},
		{"exactly at stop threshold holds", "90", ActionHold, "no exit"},
		{"mild loss holds", "95", ActionHold, "no exit"},
		{"flat holds", "100", ActionHold, "no exit"},
		{"exactly at profit threshold holds", "120", ActionHold, "no exit"},
		{"large gain closes", "121", ActionClose, "take-profit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			latest := decimal.RequireFromString(tt.latest)
			got := eval.Evaluate(pos, &latest)
			if got.Action != tt.wantAction {
				t.Fatalf("Action = %s, want %s (reason %q)", got.Action, tt.wantAction, got.Reason)
			}
			if !strings.HasPrefix(got.Reason, tt.reasonPrefix) {
				t.Errorf("Reason = %q, want prefix %q", got.Reason, tt.reasonPrefix)
			}
			if got.Action == ActionClose && !got.Price.Equal(latest) {
				t.Errorf("Price = %s, want %s", got.Price, latest)
			}
		})
	}
}

func TestEvaluateMissingPriceNeverCloses(t *testing.T) {
	eval := NewEvaluator(testRules())
	pos := domain.Position{
		Symbol:     "AAPL",
		Market:     domain.MarketUS,
		EntryPrice: decimal.RequireFromString("100"),
		Quantity:   10,
	}

	got := eval.Evaluate(pos, nil)
	if got.Action != ActionSkip {
		t.Fatalf("Action = %s, want %s", got.Action, ActionSkip)
	}
	if !strings.Contains(got.Reason, "insufficient data") {
		t.Errorf("Reason = %q, want insufficient data", got.Reason)
	}
}
