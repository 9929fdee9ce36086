package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is a derived view: an executed buy decision with no SELL trade
// referencing it. It transitions open -> closed exactly once, the moment a
// matching SELL is committed. There is no partial-close model; the closing
// quantity always equals ExecutedQuantity.
type Position struct {
	DecisionID     int64
	Symbol         string
	DisplayName    string
	Market         Market
	EntryPrice     decimal.Decimal
	Quantity       int64
	OpenedAt       time.Time
	DailySummaryID *int64
}

// CostValue returns the position valued at its entry price, excluding fees.
func (p Position) CostValue() decimal.Decimal {
	return p.EntryPrice.Mul(decimal.NewFromInt(p.Quantity))
}

// ClosedLot is the joined view the realized P&L calculation works from: one
// SELL trade together with the entry terms of the decision it closed and the
// total fees paid on the BUY side of that decision.
type ClosedLot struct {
	TradeID         int64
	Symbol          string
	Quantity        int64
	SellPrice       decimal.Decimal
	SellCommission  decimal.Decimal
	SellTransferTax decimal.Decimal
	EntryPrice      decimal.Decimal
	EntryQuantity   int64
	EntryFees       decimal.Decimal
}
