package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide distinguishes buy and sell legs in the trade ledger.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// Trade is one row of the append-only trade ledger. Trades are never mutated
// after insertion.
type Trade struct {
	ID          int64
	Symbol      string
	DisplayName string
	Market      Market
	Side        TradeSide
	OccurredAt  time.Time
	Quantity    int64
	Price       decimal.Decimal
	Commission  decimal.Decimal
	TransferTax decimal.Decimal
	OtherFees   decimal.Decimal
	// NetAmount is signed: negative for BUY, positive for SELL.
	NetAmount decimal.Decimal
	// DecisionID links a SELL back to the buy decision it closes.
	DecisionID  *int64
	CloseReason string
}

// Fees returns the total fees carried by the trade.
func (t Trade) Fees() decimal.Decimal {
	return t.Commission.Add(t.TransferTax).Add(t.OtherFees)
}
