package pnl

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeTradeStore struct {
	lots        []domain.ClosedLot
	lotsErr     error
	openBuyFees decimal.Decimal
}

func (f *fakeTradeStore) Insert(ctx context.Context, trade domain.Trade) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeTradeStore) ListClosedLots(ctx context.Context, date time.Time) ([]domain.ClosedLot, error) {
	return f.lots, f.lotsErr
}

func (f *fakeTradeStore) SumUnmatchedBuyFees(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	return f.openBuyFees, nil
}

func (f *fakeTradeStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Trade, error) {
	return nil, nil
}

func TestLotPnL(t *testing.T) {
	// Bought 10 @ 100 paying 6.00 in entry fees, sold all 10 @ 125 paying
	// 5.00 commission and 1.25 transfer tax:
	//   (1250 - 6.25) - (1000 + 6.00) = 237.75
	lot := domain.ClosedLot{
		Symbol:          "AAPL",
		Quantity:        10,
		SellPrice:       dec("125"),
		SellCommission:  dec("5.00"),
		SellTransferTax: dec("1.25"),
		EntryPrice:      dec("100"),
		EntryQuantity:   10,
		EntryFees:       dec("6.00"),
	}

	pnl, fees := LotPnL(lot)
	if want := dec("237.75"); !pnl.Equal(want) {
		t.Errorf("pnl = %s, want %s", pnl, want)
	}
	if want := dec("12.25"); !fees.Equal(want) {
		t.Errorf("fees = %s, want %s", fees, want)
	}
}

func TestLotPnLAllocatesEntryFeesProportionally(t *testing.T) {
	lot := domain.ClosedLot{
		Symbol:          "AAPL",
		Quantity:        5,
		SellPrice:       dec("110"),
		SellCommission:  dec("5.00"),
		SellTransferTax: dec("0.55"),
		EntryPrice:      dec("100"),
		EntryQuantity:   10,
		EntryFees:       dec("6.00"),
	}

	// Half the entry fees (3.00) attach to the 5 sold shares:
	//   (550 - 5.55) - (500 + 3.00) = 41.45
	pnl, fees := LotPnL(lot)
	if want := dec("41.45"); !pnl.Equal(want) {
		t.Errorf("pnl = %s, want %s", pnl, want)
	}
	if want := dec("8.55"); !fees.Equal(want) {
		t.Errorf("fees = %s, want %s", fees, want)
	}
}

func TestCalculateSumsLotsAndOpenBuyFees(t *testing.T) {
	store := &fakeTradeStore{
		lots: []domain.ClosedLot{
			{
				Symbol:          "600519",
				Quantity:        10,
				SellPrice:       dec("125"),
				SellCommission:  dec("5.00"),
				SellTransferTax: dec("1.25"),
				EntryPrice:      dec("100"),
				EntryQuantity:   10,
				EntryFees:       dec("6.00"),
			},
			{
				Symbol:          "000001",
				Quantity:        100,
				SellPrice:       dec("9.50"),
				SellCommission:  dec("5.00"),
				SellTransferTax: dec("0.95"),
				EntryPrice:      dec("10.00"),
				EntryQuantity:   100,
				EntryFees:       dec("5.00"),
			},
		},
		// A position bought today and still open paid 5.00 in fees.
		openBuyFees: dec("5.00"),
	}

	calc := NewRealizedCalculator(store, discardLogger())
	result, err := calc.Calculate(context.Background(), time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	// 237.75 + ((950 - 5.95) - 1005) = 237.75 - 60.95 = 176.80
	if want := dec("176.80"); !result.Total.Equal(want) {
		t.Errorf("Total = %s, want %s", result.Total, want)
	}
	// 12.25 + 10.95 + 5.00
	if want := dec("28.20"); !result.Fees.Equal(want) {
		t.Errorf("Fees = %s, want %s", result.Fees, want)
	}

	if len(result.Details) != 2 {
		t.Fatalf("Details = %v, want 2 lines", result.Details)
	}
	if !strings.Contains(result.Details[0], "Sold 600519: realized P&L 237.75") {
		t.Errorf("Details[0] = %q", result.Details[0])
	}
}

func TestCalculateEmptyDayIsZero(t *testing.T) {
	store := &fakeTradeStore{openBuyFees: decimal.Zero}

	calc := NewRealizedCalculator(store, discardLogger())
	result, err := calc.Calculate(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if !result.Total.IsZero() || !result.Fees.IsZero() || len(result.Details) != 0 {
		t.Errorf("empty day result = %+v, want zeros", result)
	}
}
