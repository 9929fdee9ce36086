package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one daily bar from the local time-series store. Bars are written
// by the external collection process; this subsystem only reads closes.
type Candle struct {
	Symbol    string
	Market    Market
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    int64
}
