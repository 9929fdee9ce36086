// Package marketdata provides the external price provider used as a fallback
// when the local time-series store has no data for a symbol.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/yulin9901/stock-analyzer/internal/domain"
)

// Config holds parameters for the Yahoo Finance chart client.
type Config struct {
	// BaseURL is the API root, e.g. "https://query1.finance.yahoo.com".
	BaseURL string
	Timeout time.Duration
	// RangeDays is how many recent days of bars to request. The most
	// recent non-null close in the window is used.
	RangeDays int
}

// YahooClient implements domain.MarketDataClient against the Yahoo Finance
// v8 chart API.
type YahooClient struct {
	client    *resty.Client
	rangeDays int
}

// NewYahooClient creates a YahooClient from the given config.
func NewYahooClient(cfg Config) *YahooClient {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("User-Agent", "stock-analyzer/1.0")

	rangeDays := cfg.RangeDays
	if rangeDays <= 0 {
		rangeDays = 5
	}

	return &YahooClient{client: client, rangeDays: rangeDays}
}

// chartResponse mirrors the subset of the chart payload we read. Closes are
// decoded as json.Number so prices never pass through float64 on their way
// into decimal values.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*json.Number `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchLatestClose returns the most recent non-null daily close for the
// symbol. The boolean is false when the provider returns no usable data;
// only transport and decode failures are errors.
func (y *YahooClient) FetchLatestClose(ctx context.Context, symbol string, market domain.Market) (decimal.Decimal, bool, error) {
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"interval":             "1d",
			"range":                strconv.Itoa(y.rangeDays) + "d",
			"region":               string(market),
			"includeAdjustedClose": "true",
		}).
		Get("/v8/finance/chart/" + symbol)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("marketdata: fetch chart for %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return decimal.Zero, false, fmt.Errorf("marketdata: chart for %s: status %d", symbol, resp.StatusCode())
	}

	var chart chartResponse
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		return decimal.Zero, false, fmt.Errorf("marketdata: decode chart for %s: %w", symbol, err)
	}

	if chart.Chart.Error != nil || len(chart.Chart.Result) == 0 {
		return decimal.Zero, false, nil
	}
	quotes := chart.Chart.Result[0].Indicators.Quote
	if len(quotes) == 0 {
		return decimal.Zero, false, nil
	}

	closes := quotes[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] == nil {
			continue
		}
		price, err := decimal.NewFromString(closes[i].String())
		if err != nil {
			return decimal.Zero, false, fmt.Errorf("marketdata: parse close for %s: %w", symbol, err)
		}
		return price, true, nil
	}

	return decimal.Zero, false, nil
}
