package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *YahooClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewYahooClient(Config{
		BaseURL:   srv.URL,
		Timeout:   5 * time.Second,
		RangeDays: 5,
	})
}

func TestFetchLatestClosePicksNewestNonNull(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/600519.SS" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		// Trailing nulls are holidays; the scan walks back to 101.25.
		w.Write([]byte(`{"chart":{"result":[{"indicators":{"quote":[{"close":[99.5,100.0,101.25,null,null]}]}}]}}`))
	})

	price, ok, err := client.FetchLatestClose(context.Background(), "600519.SS", domain.MarketShanghai)
	if err != nil {
		t.Fatalf("FetchLatestClose: %v", err)
	}
	if !ok {
		t.Fatal("ok = false, want a price")
	}
	if want := decimal.RequireFromString("101.25"); !price.Equal(want) {
		t.Errorf("price = %s, want %s", price, want)
	}
}

func TestFetchLatestCloseProviderErrorPayloadIsMissingData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`))
	})

	_, ok, err := client.FetchLatestClose(context.Background(), "NOPE", domain.MarketUS)
	if err != nil {
		t.Fatalf("FetchLatestClose: %v", err)
	}
	if ok {
		t.Error("ok = true for provider error payload")
	}
}

func TestFetchLatestCloseAllNullClosesIsMissingData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"chart":{"result":[{"indicators":{"quote":[{"close":[null,null]}]}}]}}`))
	})

	_, ok, err := client.FetchLatestClose(context.Background(), "AAPL", domain.MarketUS)
	if err != nil {
		t.Fatalf("FetchLatestClose: %v", err)
	}
	if ok {
		t.Error("ok = true for all-null closes")
	}
}

func TestFetchLatestCloseHTTPFailureIsAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream busy", http.StatusServiceUnavailable)
	})

	_, _, err := client.FetchLatestClose(context.Background(), "AAPL", domain.MarketUS)
	if err == nil {
		t.Fatal("expected error for HTTP 503")
	}
}
