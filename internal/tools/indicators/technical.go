package indicators

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/markcheno/go-talib"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools/market"
)

// Columns in output order.
var Columns = []string{"macd", "rsi_14", "boll", "boll_ub", "boll_lb", "close_50_sma", "close_200_sma"}

const tailRows = 5

// Row holds one day of indicator values. A nil entry means not enough history.
type Row struct {
	Date   string
	Values map[string]*float64
}

// series is an indicator output plus the first index holding a real value.
type series struct {
	values    []float64
	validFrom int
}

func (s series) at(i int) *float64 {
	if s.values == nil || i < s.validFrom || i >= len(s.values) {
		return nil
	}
	v := s.values[i]
	return &v
}

// Compute derives every column for each bar. talib panics on short input, so each
// indicator is only computed once the series covers its lookback.
func Compute(bars []market.Bar) []Row {
	if len(bars) == 0 {
		return nil
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close.InexactFloat64()
	}
	n := len(closes)

	cols := map[string]series{}
	if n >= 35 {
		macd, _, _ := talib.Macd(closes, 12, 26, 9)
		cols["macd"] = series{values: macd, validFrom: 33}
	}
	if n > 14 {
		cols["rsi_14"] = series{values: talib.Rsi(closes, 14), validFrom: 14}
	}
	if n >= 20 {
		upper, middle, lower := talib.BBands(closes, 20, 2.0, 2.0, talib.SMA)
		cols["boll"] = series{values: middle, validFrom: 19}
		cols["boll_ub"] = series{values: upper, validFrom: 19}
		cols["boll_lb"] = series{values: lower, validFrom: 19}
	}
	if n >= 50 {
		cols["close_50_sma"] = series{values: talib.Sma(closes, 50), validFrom: 49}
	}
	if n >= 200 {
		cols["close_200_sma"] = series{values: talib.Sma(closes, 200), validFrom: 199}
	}

	rows := make([]Row, n)
	for i, b := range bars {
		values := make(map[string]*float64, len(Columns))
		for _, c := range Columns {
			values[c] = cols[c].at(i)
		}
		rows[i] = Row{Date: b.Date.Format("2006-01-02"), Values: values}
	}
	return rows
}

// FormatTail renders the last n rows as CSV; missing values are empty cells.
func FormatTail(rows []Row, n int) string {
	if len(rows) > n {
		rows = rows[len(rows)-n:]
	}

	var b strings.Builder
	b.WriteString("Date," + strings.Join(Columns, ",") + "\n")
	for _, r := range rows {
		cells := make([]string, 0, len(Columns)+1)
		cells = append(cells, r.Date)
		for _, c := range Columns {
			if v := r.Values[c]; v != nil {
				cells = append(cells, strconv.FormatFloat(*v, 'f', 4, 64))
			} else {
				cells = append(cells, "")
			}
		}
		b.WriteString(strings.Join(cells, ",") + "\n")
	}
	return b.String()
}

// NewTechnicalIndicatorsTool exposes Compute as get_technical_indicators.
func NewTechnicalIndicatorsTool(source market.BarSource) tools.Tool {
	return tools.New(
		"get_technical_indicators",
		"Retrieve key technical indicators for a stock (MACD, RSI, Bollinger Bands, 50/200-day SMA). "+
			"Use at least 90 days of history between start_date and end_date.",
		[]tools.Param{
			{Name: "symbol", Description: "ticker symbol of the company", Required: true},
			{Name: "start_date", Description: "start date in yyyy-mm-dd format", Required: true},
			{Name: "end_date", Description: "end date in yyyy-mm-dd format", Required: true},
		},
		func(ctx context.Context, args tools.Args) (string, error) {
			start, end, err := market.ParseRange(args["start_date"], args["end_date"])
			if err != nil {
				return fmt.Sprintf("Error calculating stockstats indicators: %v", err), nil
			}
			bars, err := source.Bars(ctx, args["symbol"], start, end)
			if err != nil {
				return fmt.Sprintf("Error calculating stockstats indicators: %v", err), nil
			}
			if len(bars) == 0 {
				return "No data to calculate indicators.", nil
			}
			return FormatTail(Compute(bars), tailRows), nil
		},
	)
}
