package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyPnL is the per-date profit-and-loss record. Exactly one row exists per
// calendar date; recalculating a date replaces the row.
type DailyPnL struct {
	Date           time.Time
	RealizedPnL    decimal.Decimal
	UnrealizedPnL  decimal.Decimal
	FeesPaid       decimal.Decimal
	PortfolioValue decimal.Decimal
	// Details holds human-readable line items explaining the calculation.
	Details []string
}
