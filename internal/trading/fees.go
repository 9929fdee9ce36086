package trading

import (
	"github.com/shopspring/decimal"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

// FeeSchedule is the transaction fee model: proportional commission with a
// floor, plus a transfer tax on the sell side only. Values are fixed-point
// decimals end to end.
type FeeSchedule struct {
	CommissionRate decimal.Decimal
	MinCommission  decimal.Decimal
	SellTaxRate    decimal.Decimal
}

// TradeCosts is the fee breakdown for one trade.
type TradeCosts struct {
	GrossValue  decimal.Decimal
	Commission  decimal.Decimal
	TransferTax decimal.Decimal
	// NetAmount is signed: positive for SELL (proceeds after fees),
	// negative for BUY (outlay plus fees).
	NetAmount decimal.Decimal
}

// Commission returns max(MinCommission, grossValue * CommissionRate).
func (f FeeSchedule) Commission(grossValue decimal.Decimal) decimal.Decimal {
	c := grossValue.Mul(f.CommissionRate)
	if c.LessThan(f.MinCommission) {
		return f.MinCommission
	}
	return c
}

// TransferTax returns grossValue * SellTaxRate for SELL trades and zero for
// BUY trades, which carry no transfer tax in this model.
func (f FeeSchedule) TransferTax(side domain.TradeSide, grossValue decimal.Decimal) decimal.Decimal {
	if side != domain.TradeSideSell {
		return decimal.Zero
	}
	return grossValue.Mul(f.SellTaxRate)
}

// Apply computes the full fee breakdown for a trade of qty shares at price.
func (f FeeSchedule) Apply(side domain.TradeSide, price decimal.Decimal, qty int64) TradeCosts {
	gross := price.Mul(decimal.NewFromInt(qty))
	commission := f.Commission(gross)
	tax := f.TransferTax(side, gross)

	net := gross.Sub(commission).Sub(tax)
	if side == domain.TradeSideBuy {
		net = gross.Add(commission).Add(tax).Neg()
	}

	return TradeCosts{
		GrossValue:  gross,
		Commission:  commission,
		TransferTax: tax,
		NetAmount:   net,
	}
}
