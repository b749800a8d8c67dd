// Package market downloads OHLCV candles from the Yahoo Finance chart API.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
)

// DefaultBaseURL is the public chart API endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// ErrNoData is returned when the API has no candles for a ticker,
// e.g. an unknown or delisted symbol.
var ErrNoData = errors.New("no data for ticker")

const (
	userAgent         = "quoteflow/0.1.0"
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	retryBaseDelay    = 500 * time.Millisecond
)

// Client fetches candle data over HTTP.
type Client struct {
	baseURL    string
	interval   string
	httpClient *http.Client
	maxRetries uint64
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithInterval sets the candle interval (e.g. "1h", "1d").
func WithInterval(interval string) Option {
	return func(c *Client) { c.interval = interval }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a chart API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		interval:   "1h",
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// chartResponse mirrors the subset of the v8 chart payload we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch downloads the candles for one ticker over the given window.
// Candles are returned in ascending timestamp order; bars without a
// close are dropped (the API emits nulls for market gaps).
func (c *Client) Fetch(ctx context.Context, ticker string, w Window) (*Series, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(ticker))

	q := url.Values{}
	q.Set("interval", c.interval)
	q.Set("period1", fmt.Sprintf("%d", w.Start.Unix()))
	q.Set("period2", fmt.Sprintf("%d", w.End.Unix()))
	q.Set("includePrePost", "false")
	q.Set("events", "div,splits")

	var body []byte

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(retryBaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Network errors are worth retrying.
			return retry.RetryableError(err)
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNoData, ticker)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			c.logger.Debug("retryable response", "ticker", ticker, "status", resp.StatusCode)
			return retry.RetryableError(fmt.Errorf("server returned %d for %s", resp.StatusCode, ticker))
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("server returned %d for %s", resp.StatusCode, ticker)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	series, err := decodeChart(ticker, body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched candles", "ticker", ticker, "count", len(series.Candles))
	return series, nil
}

// decodeChart converts a chart API payload into a Series.
func decodeChart(ticker string, body []byte) (*Series, error) {
	var cr chartResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("failed to decode chart response for %s: %w", ticker, err)
	}

	if cr.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNoData, ticker, cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}

	result := cr.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return &Series{Ticker: ticker}, nil
	}
	quote := result.Indicators.Quote[0]

	series := &Series{Ticker: ticker, Candles: make([]Candle, 0, len(result.Timestamp))}
	for i, ts := range result.Timestamp {
		closePrice := deref(quote.Close, i)
		if math.IsNaN(closePrice) {
			// Null close means a gap in trading, not a usable bar.
			continue
		}
		series.Candles = append(series.Candles, Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      deref(quote.Open, i),
			High:      deref(quote.High, i),
			Low:       deref(quote.Low, i),
			Close:     closePrice,
			Volume:    derefInt(quote.Volume, i),
		})
	}

	return series, nil
}

func deref(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return math.NaN()
	}
	return *vals[i]
}

func derefInt(vals []*int64, i int) int64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}
