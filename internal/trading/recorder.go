package trading

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

// Recorder books closing trades. Every close is one independently committed
// insert; a failure recording one position never blocks the rest of a batch.
type Recorder struct {
	trades domain.TradeStore
	fees   FeeSchedule
	now    func() time.Time
	logger *slog.Logger
}

// NewRecorder creates a Recorder writing through the given trade store.
func NewRecorder(trades domain.TradeStore, fees FeeSchedule, logger *slog.Logger) *Recorder {
	return &Recorder{
		trades: trades,
		fees:   fees,
		now:    time.Now,
		logger: logger.With(slog.String("component", "trade_recorder")),
	}
}

// RecordClose books a SELL for the full position quantity at the given price
// and returns the persisted trade.
func (r *Recorder) RecordClose(ctx context.Context, pos domain.Position, price decimal.Decimal, reason string) (domain.Trade, error) {
	costs := r.fees.Apply(domain.TradeSideSell, price, pos.Quantity)

	decisionID := pos.DecisionID
	trade := domain.Trade{
		Symbol:      pos.Symbol,
		DisplayName: pos.DisplayName,
		Market:      pos.Market,
		Side:        domain.TradeSideSell,
		OccurredAt:  r.now().UTC(),
		Quantity:    pos.Quantity,
		Price:       price,
		Commission:  costs.Commission,
		TransferTax: costs.TransferTax,
		OtherFees:   decimal.Zero,
		NetAmount:   costs.NetAmount,
		DecisionID:  &decisionID,
		CloseReason: reason,
	}

	id, err := r.trades.Insert(ctx, trade)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("trading: record close for decision %d: %w", pos.DecisionID, err)
	}
	trade.ID = id

	r.logger.InfoContext(ctx, "closed position",
		slog.Int64("decision_id", pos.DecisionID),
		slog.String("symbol", pos.Symbol),
		slog.String("price", price.String()),
		slog.Int64("quantity", pos.Quantity),
		slog.String("net_amount", costs.NetAmount.String()),
		slog.String("reason", reason),
	)
	return trade, nil
}
