package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

const (
	defaultYahooURL = "https://query1.finance.yahoo.com"
	dateLayout      = "2006-01-02"
)

// Bar is one daily OHLCV candle.
type Bar struct {
	Date   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

// BarSource loads daily bars for a symbol.
type BarSource interface {
	Bars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error)
}

// YahooClient reads daily history from the Yahoo Finance chart endpoint.
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewYahooClient(baseURL string, httpClient *http.Client) *YahooClient {
	if baseURL == "" {
		baseURL = defaultYahooURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &YahooClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

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
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Bars returns daily bars with start <= date <= end, oldest first. Days with missing prices are skipped.
func (c *YahooClient) Bars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error) {
	if symbol == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "symbol is required")
	}
	if end.Before(start) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "end %s before start %s", end.Format(dateLayout), start.Format(dateLayout))
	}

	q := url.Values{}
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	// period2 is exclusive on the Yahoo side
	q.Set("period2", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))
	q.Set("interval", "1d")

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create chart request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "chart request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "decode chart response (status %d): %v", resp.StatusCode, err)
	}
	if parsed.Chart.Error != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "chart error %s: %s", parsed.Chart.Error.Code, parsed.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrExternal, "chart returned status %d", resp.StatusCode)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := parsed.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		open, high, low, closePx := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if open == nil || high == nil || low == nil || closePx == nil {
			continue
		}
		var volume int64
		if v := at(quote.Volume, i); v != nil {
			volume = int64(*v)
		}
		bars = append(bars, Bar{
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:   decimal.NewFromFloat(*open),
			High:   decimal.NewFromFloat(*high),
			Low:    decimal.NewFromFloat(*low),
			Close:  decimal.NewFromFloat(*closePx),
			Volume: volume,
		})
	}
	return bars, nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

// FormatCSV renders bars as a Date,Open,High,Low,Close,Volume table.
func FormatCSV(bars []Bar) string {
	var b strings.Builder
	b.WriteString("Date,Open,High,Low,Close,Volume\n")
	for _, bar := range bars {
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%d\n",
			bar.Date.Format(dateLayout),
			bar.Open.StringFixed(2), bar.High.StringFixed(2), bar.Low.StringFixed(2), bar.Close.StringFixed(2),
			bar.Volume)
	}
	return b.String()
}

// ParseRange parses a yyyy-mm-dd date range.
func ParseRange(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrapf(errors.ErrInvalidInput, "start_date %q: %v", start, err)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrapf(errors.ErrInvalidInput, "end_date %q: %v", end, err)
	}
	return s, e, nil
}

// NewHistoryTool exposes daily OHLCV history as get_yfinance_data.
func NewHistoryTool(source BarSource) tools.Tool {
	return tools.New(
		"get_yfinance_data",
		"Retrieve the stock price data (OHLCV) for a given ticker symbol.",
		[]tools.Param{
			{Name: "symbol", Description: "ticker symbol of the company", Required: true},
			{Name: "start_date", Description: "start date in yyyy-mm-dd format", Required: true},
			{Name: "end_date", Description: "end date in yyyy-mm-dd format", Required: true},
		},
		func(ctx context.Context, args tools.Args) (string, error) {
			start, end, err := ParseRange(args["start_date"], args["end_date"])
			if err != nil {
				return fmt.Sprintf("Error fetching market data: %v", err), nil
			}
			bars, err := source.Bars(ctx, args["symbol"], start, end)
			if err != nil {
				return fmt.Sprintf("Error fetching market data: %v", err), nil
			}
			if len(bars) == 0 {
				return fmt.Sprintf("No data found for symbol '%s' between %s and %s", args["symbol"], args["start_date"], args["end_date"]), nil
			}
			return FormatCSV(bars), nil
		},
	)
}
