// Package entity defines the inputs and the per-cycle result of the dashboard.
package entity

import (
	"time"

	"github.com/guregu/null/v6"

	indicators "stock_analyzer/internal/feature/indicators/domain/entity"
	market "stock_analyzer/internal/feature/marketdata/domain/entity"
)

// Defaults shown when the page is opened without a query.
const (
	DefaultSymbol = "AAPL"
	DefaultStart  = "2019-07-06"
	DefaultEnd    = "2019-07-10"
)

// Inputs is what the user picked: a symbol and an inclusive date range.
type Inputs struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// DefaultInputs returns AAPL over 2019-07-06..2019-07-10.
func DefaultInputs() Inputs {
	start, _ := market.ParseDate(DefaultStart)
	end, _ := market.ParseDate(DefaultEnd)
	return Inputs{Symbol: DefaultSymbol, Start: start, End: end}
}

// DisplayBundle is everything one fetch-compute cycle produced. It is built fresh per cycle
// and never cached.
type DisplayBundle struct {
	Symbol      string
	Start       time.Time
	End         time.Time
	Provider    string
	Series      market.PriceSeries
	MACD        indicators.Series
	MACDSignal  indicators.Series
	RSI         indicators.Series
	LivePrice   null.Float
	Summary     market.Summary
	GeneratedAt time.Time
}
