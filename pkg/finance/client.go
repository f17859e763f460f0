// Package finance fetches daily OHLCV history for stock tickers and renders
// it as markdown tables for inclusion in a system prompt.
package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the chart API endpoint used when none is configured.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// maxResponseBody caps how much of a chart response is read (4MB).
const maxResponseBody = 4 * 1024 * 1024

var supportedPeriods = map[string]struct{}{
	"1d": {}, "5d": {}, "1mo": {}, "3mo": {}, "6mo": {},
	"1y": {}, "2y": {}, "5y": {}, "max": {},
}

// ValidPeriod reports whether period names a supported history range.
func ValidPeriod(period string) bool {
	_, ok := supportedPeriods[period]
	return ok
}

// Periods returns the supported history ranges in sorted order.
func Periods() []string {
	out := make([]string, 0, len(supportedPeriods))
	for p := range supportedPeriods {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Bar is one trading day of a ticker's history.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Series is the fetched daily history for one ticker.
type Series struct {
	Ticker   string
	Currency string
	Bars     []Bar
}

// Client fetches ticker history over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// ClientConfig holds configuration for a Client.
type ClientConfig struct {
	// BaseURL overrides the chart API endpoint, mainly for tests. Empty
	// means DefaultBaseURL.
	BaseURL string

	// HTTPClient overrides the transport. Nil means a 30s-timeout client.
	HTTPClient *http.Client

	Logger zerolog.Logger
}

// NewClient creates a chart API client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
}

// chart API wire types. Quote arrays use pointers because the API reports
// missing trading data as JSON nulls.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Currency string `json:"currency"`
		Symbol   string `json:"symbol"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

type chartQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// Fetch returns the daily history of ticker over period.
func (c *Client) Fetch(ctx context.Context, ticker, period string) (*Series, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if !ValidPeriod(period) {
		return nil, fmt.Errorf("unsupported period %q (supported: %s)", period, strings.Join(Periods(), ", "))
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(period))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build chart request: %w", err)
	}
	req.Header.Set("User-Agent", "docqna/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chart request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read chart response: %w", err)
	}

	// The API reports errors inside a JSON envelope, also on non-200
	// statuses, so decode before checking the status code.
	var payload chartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("chart request returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to decode chart response: %w", err)
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error %s: %s", payload.Chart.Error.Code, payload.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart request returned status %d", resp.StatusCode)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("no data found for ticker %s", ticker)
	}

	series := buildSeries(ticker, payload.Chart.Result[0])
	if len(series.Bars) == 0 {
		return nil, fmt.Errorf("no data found for ticker %s", ticker)
	}

	c.logger.Debug().
		Str("ticker", series.Ticker).
		Str("period", period).
		Int("bars", len(series.Bars)).
		Msg("Fetched stock history")

	return series, nil
}

// FetchAll fetches every ticker and joins the rendered tables into one blob.
// The first failing ticker aborts the whole fetch.
func (c *Client) FetchAll(ctx context.Context, tickers []string, period string) (string, error) {
	if len(tickers) == 0 {
		return "", fmt.Errorf("at least one ticker is required")
	}

	sections := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		series, err := c.Fetch(ctx, ticker, period)
		if err != nil {
			return "", fmt.Errorf("failed to fetch stock data for %s: %w", ticker, err)
		}
		sections = append(sections, series.RenderMarkdown())
	}
	return strings.Join(sections, "\n"), nil
}

// buildSeries zips the timestamp array with the quote arrays, dropping rows
// the API nulled out.
func buildSeries(ticker string, result chartResult) *Series {
	series := &Series{
		Ticker:   ticker,
		Currency: result.Meta.Currency,
	}
	if result.Meta.Symbol != "" {
		series.Ticker = result.Meta.Symbol
	}

	if len(result.Indicators.Quote) == 0 {
		return series
	}
	quote := result.Indicators.Quote[0]

	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			break
		}
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}
		series.Bars = append(series.Bars, Bar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Close:  *quote.Close[i],
			Volume: *quote.Volume[i],
		})
	}
	return series
}
