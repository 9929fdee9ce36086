package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Decision is an executed buy decision produced by the upstream strategy
// process. Rows are immutable once executed; this subsystem only reads them.
type Decision struct {
	ID               int64
	Symbol           string
	DisplayName      string
	Market           Market
	ExecutedPrice    decimal.Decimal
	ExecutedQuantity int64
	ExecutedAt       time.Time
	Executed         bool
	// DailySummaryID references the daily summary that produced the
	// decision. Opaque to this subsystem.
	DailySummaryID *int64
}
