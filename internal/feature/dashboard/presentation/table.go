// Package presentation turns a DisplayBundle into the artifacts the page shows: a data table,
// Plotly figure specs, the summary panel and the CSV export.
package presentation

import (
	"strconv"

	"github.com/guregu/null/v6"

	"stock_analyzer/internal/feature/dashboard/domain/entity"
	market "stock_analyzer/internal/feature/marketdata/domain/entity"
)

// Undefined marks a value that does not exist (indicator warm-up, missing metric).
const Undefined = "—"

// TableColumns is the header of the data table.
var TableColumns = []string{"Date", "Open", "High", "Low", "Close", "Volume", "MACD", "RSI"}

// Row is one session in the data table, already formatted for display.
type Row struct {
	Date   string `json:"date"`
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume string `json:"volume"`
	MACD   string `json:"macd"`
	RSI    string `json:"rsi"`
}

// Table returns one row per bar, in ascending date order.
func Table(b entity.DisplayBundle) []Row {
	rows := make([]Row, 0, b.Series.Len())
	for i, bar := range b.Series.Bars {
		rows = append(rows, Row{
			Date:   bar.Time.Format(market.DateLayout),
			Open:   price(bar.Open),
			High:   price(bar.High),
			Low:    price(bar.Low),
			Close:  price(bar.Close),
			Volume: strconv.FormatInt(bar.Volume, 10),
			MACD:   optional(b.MACD.Values, i, 4),
			RSI:    optional(b.RSI.Values, i, 2),
		})
	}
	return rows
}

// DateRange is the "first - last" session line shown above the table.
func DateRange(b entity.DisplayBundle) string {
	if b.Series.Len() == 0 {
		return ""
	}
	return b.Series.First().Time.Format(market.DateLayout) + " - " + b.Series.Last().Time.Format(market.DateLayout)
}

func price(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func optional(values []null.Float, i, prec int) string {
	if i >= len(values) || !values[i].Valid {
		return Undefined
	}
	return strconv.FormatFloat(values[i].Float64, 'f', prec, 64)
}
