package pricing

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

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeCandleStore struct {
	closes map[string]string
	err    error
	calls  int
}

func (f *fakeCandleStore) LatestCloseOnOrBefore(ctx context.Context, symbol string, asOf time.Time) (decimal.Decimal, error) {
	f.calls++
	if f.err != nil {
		return decimal.Zero, f.err
	}
	s, ok := f.closes[symbol]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	return decimal.RequireFromString(s), nil
}

type fakeExternal struct {
	closes map[string]string
	err    error
	calls  int
}

func (f *fakeExternal) FetchLatestClose(ctx context.Context, symbol string, market domain.Market) (decimal.Decimal, bool, error) {
	f.calls++
	if f.err != nil {
		return decimal.Zero, false, f.err
	}
	s, ok := f.closes[symbol]
	if !ok {
		return decimal.Zero, false, nil
	}
	return decimal.RequireFromString(s), true, nil
}

type fakeQuoteCache struct {
	entries map[string]string
	getErr  error
	sets    int
}

func cacheKey(symbol string, asOf time.Time) string {
	return symbol + "@" + asOf.Format(time.DateOnly)
}

func (f *fakeQuoteCache) GetClose(ctx context.Context, symbol string, asOf time.Time) (decimal.Decimal, error) {
	if f.getErr != nil {
		return decimal.Zero, f.getErr
	}
	s, ok := f.entries[cacheKey(symbol, asOf)]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	return decimal.RequireFromString(s), nil
}

func (f *fakeQuoteCache) SetClose(ctx context.Context, symbol string, asOf time.Time, price decimal.Decimal) error {
	f.entries[cacheKey(symbol, asOf)] = price.String()
	f.sets++
	return nil
}

var asOf = time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

func TestResolveCacheHitSkipsStores(t *testing.T) {
	candles := &fakeCandleStore{}
	external := &fakeExternal{}
	cache := &fakeQuoteCache{entries: map[string]string{cacheKey("600519", asOf): "101.5"}}

	r := NewResolver(candles, external, cache, discardLogger())
	price, ok, err := r.Resolve(context.Background(), "600519", domain.MarketShanghai, asOf)
	if err != nil || !ok {
		t.Fatalf("Resolve = (%s, %v, %v)", price, ok, err)
	}
	if want := dec("101.5"); !price.Equal(want) {
		t.Errorf("price = %s, want %s", price, want)
	}
	if candles.calls != 0 || external.calls != 0 {
		t.Errorf("cache hit still queried stores: candles %d, external %d", candles.calls, external.calls)
	}
}

func TestResolvePrefersLocalCandles(t *testing.T) {
	candles := &fakeCandleStore{closes: map[string]string{"600519": "99.8"}}
	external := &fakeExternal{closes: map[string]string{"600519": "55"}}
	cache := &fakeQuoteCache{entries: map[string]string{}}

	r := NewResolver(candles, external, cache, discardLogger())
	price, ok, err := r.Resolve(context.Background(), "600519", domain.MarketShanghai, asOf)
	if err != nil || !ok {
		t.Fatalf("Resolve = (%s, %v, %v)", price, ok, err)
	}
	if want := dec("99.8"); !price.Equal(want) {
		t.Errorf("price = %s, want %s", price, want)
	}
	if external.calls != 0 {
		t.Errorf("external called %d times despite local hit", external.calls)
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}
}

func TestResolveFallsBackToExternal(t *testing.T) {
	candles := &fakeCandleStore{}
	external := &fakeExternal{closes: map[string]string{"AAPL": "231.59"}}

	r := NewResolver(candles, external, nil, discardLogger())
	price, ok, err := r.Resolve(context.Background(), "AAPL", domain.MarketUS, asOf)
	if err != nil || !ok {
		t.Fatalf("Resolve = (%s, %v, %v)", price, ok, err)
	}
	if want := dec("231.59"); !price.Equal(want) {
		t.Errorf("price = %s, want %s", price, want)
	}
}

func TestResolveAbsentEverywhereIsNotAnError(t *testing.T) {
	r := NewResolver(&fakeCandleStore{}, &fakeExternal{}, nil, discardLogger())

	_, ok, err := r.Resolve(context.Background(), "UNKNOWN", domain.MarketUS, asOf)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ok {
		t.Error("ok = true for symbol with no price anywhere")
	}
}

func TestResolveExternalOutageDegradesToMiss(t *testing.T) {
	external := &fakeExternal{err: errors.New("503 service unavailable")}

	r := NewResolver(&fakeCandleStore{}, external, nil, discardLogger())
	_, ok, err := r.Resolve(context.Background(), "AAPL", domain.MarketUS, asOf)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ok {
		t.Error("ok = true when provider is down")
	}
}

func TestResolveCandleStoreFailureIsFatal(t *testing.T) {
	candles := &fakeCandleStore{err: errors.New("connection refused")}

	r := NewResolver(candles, &fakeExternal{}, nil, discardLogger())
	_, _, err := r.Resolve(context.Background(), "600519", domain.MarketShanghai, asOf)
	if err == nil {
		t.Fatal("expected error when candle store fails")
	}
}

func TestResolveCacheFailureDegradesToMiss(t *testing.T) {
	candles := &fakeCandleStore{closes: map[string]string{"600519": "99.8"}}
	cache := &fakeQuoteCache{entries: map[string]string{}, getErr: errors.New("redis down")}

	r := NewResolver(candles, &fakeExternal{}, cache, discardLogger())
	price, ok, err := r.Resolve(context.Background(), "600519", domain.MarketShanghai, asOf)
	if err != nil || !ok {
		t.Fatalf("Resolve = (%s, %v, %v)", price, ok, err)
	}
	if want := dec("99.8"); !price.Equal(want) {
		t.Errorf("price = %s, want %s", price, want)
	}
}
