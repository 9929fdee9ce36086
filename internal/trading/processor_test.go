package trading

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeDecisionStore struct {
	open    []domain.Position
	listErr error
}

func (f *fakeDecisionStore) ListOpen(ctx context.Context) ([]domain.Position, error) {
	return f.open, f.listErr
}

func (f *fakeDecisionStore) GetByID(ctx context.Context, id int64) (domain.Decision, error) {
	return domain.Decision{}, domain.ErrNotFound
}

type fakeResolver struct {
	prices map[string]string // symbol -> close; absent means no price
	errs   map[string]error
}

func (f *fakeResolver) Resolve(ctx context.Context, symbol string, market domain.Market, asOf time.Time) (decimal.Decimal, bool, error) {
	if err := f.errs[symbol]; err != nil {
		return decimal.Zero, false, err
	}
	s, ok := f.prices[symbol]
	if !ok {
		return decimal.Zero, false, nil
	}
	return decimal.RequireFromString(s), true, nil
}

type fakeTradeStore struct {
	inserted  []domain.Trade
	failOn    map[string]bool // symbol -> insert fails
	insertErr error
}

func (f *fakeTradeStore) Insert(ctx context.Context, trade domain.Trade) (int64, error) {
	if f.failOn[trade.Symbol] {
		if f.insertErr != nil {
			return 0, f.insertErr
		}
		return 0, errors.New("insert rejected")
	}
	f.inserted = append(f.inserted, trade)
	return int64(len(f.inserted)), nil
}

func (f *fakeTradeStore) ListClosedLots(ctx context.Context, date time.Time) ([]domain.ClosedLot, error) {
	return nil, nil
}

func (f *fakeTradeStore) SumUnmatchedBuyFees(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeTradeStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Trade, error) {
	return nil, nil
}

func position(id int64, symbol, entry string, qty int64) domain.Position {
	return domain.Position{
		DecisionID: id,
		Symbol:     symbol,
		Market:     domain.MarketShanghai,
		EntryPrice: decimal.RequireFromString(entry),
		Quantity:   qty,
		OpenedAt:   time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
	}
}

func newTestProcessor(positions *fakeDecisionStore, resolver *fakeResolver, trades *fakeTradeStore) *SellProcessor {
	logger := discardLogger()
	recorder := NewRecorder(trades, testSchedule(), logger)
	return NewSellProcessor(positions, resolver, NewEvaluator(testRules()), recorder, logger)
}

func TestRunClosesHoldsAndSkips(t *testing.T) {
	positions := &fakeDecisionStore{open: []domain.Position{
		position(1, "600519", "100", 100), // 85 -> stop-loss
		position(2, "000001", "50", 200),  // 52 -> hold
		position(3, "0700", "300", 100),   // no price -> skip
	}}
	resolver := &fakeResolver{prices: map[string]string{
		"600519": "85",
		"000001": "52",
	}}
	trades := &fakeTradeStore{}

	result, err := newTestProcessor(positions, resolver, trades).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Evaluated != 3 || result.Closed != 1 || result.Held != 1 || result.Skipped != 1 || result.Failed != 0 {
		t.Fatalf("counts = %+v", result)
	}
	if len(trades.inserted) != 1 {
		t.Fatalf("inserted %d trades, want 1", len(trades.inserted))
	}

	trade := trades.inserted[0]
	if trade.Side != domain.TradeSideSell {
		t.Errorf("Side = %s, want SELL", trade.Side)
	}
	if trade.DecisionID == nil || *trade.DecisionID != 1 {
		t.Errorf("DecisionID = %v, want 1", trade.DecisionID)
	}
	if want := decimal.RequireFromString("85"); !trade.Price.Equal(want) {
		t.Errorf("Price = %s, want %s", trade.Price, want)
	}
	if trade.Quantity != 100 {
		t.Errorf("Quantity = %d, want 100", trade.Quantity)
	}
}

func TestRunIsolatesPersistenceFailures(t *testing.T) {
	positions := &fakeDecisionStore{open: []domain.Position{
		position(1, "600519", "100", 100), // close, insert fails
		position(2, "000001", "100", 100), // close, insert succeeds
	}}
	resolver := &fakeResolver{prices: map[string]string{
		"600519": "85",
		"000001": "130",
	}}
	trades := &fakeTradeStore{failOn: map[string]bool{"600519": true}}

	result, err := newTestProcessor(positions, resolver, trades).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Failed != 1 || result.Closed != 1 {
		t.Fatalf("failed = %d, closed = %d, want 1 and 1", result.Failed, result.Closed)
	}
	if len(trades.inserted) != 1 || trades.inserted[0].Symbol != "000001" {
		t.Fatalf("inserted = %+v, want only 000001", trades.inserted)
	}
}

func TestRunResolverErrorCountsAsFailure(t *testing.T) {
	positions := &fakeDecisionStore{open: []domain.Position{
		position(1, "600519", "100", 100),
	}}
	resolver := &fakeResolver{errs: map[string]error{"600519": errors.New("resolver broke")}}
	trades := &fakeTradeStore{}

	result, err := newTestProcessor(positions, resolver, trades).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Failed != 1 || result.Closed != 0 {
		t.Fatalf("counts = %+v", result)
	}
}

func TestRunListOpenFailureIsFatal(t *testing.T) {
	positions := &fakeDecisionStore{listErr: errors.New("connection refused")}

	_, err := newTestProcessor(positions, &fakeResolver{}, &fakeTradeStore{}).Run(context.Background(), time.Now())
	if err == nil {
		t.Fatal("Run: expected error when listing open positions fails")
	}
}
