package presentation

import (
	"math"

	"github.com/shopspring/decimal"

	"stock_analyzer/internal/feature/dashboard/domain/entity"
)

// LivePriceUnavailable is shown when there was no trade in the current session.
const LivePriceUnavailable = "Live price not available."

var billion = decimal.New(1, 9)

// SummaryPanel is the "Additional Information" block.
type SummaryPanel struct {
	LivePrice          string `json:"live_price"`
	LivePriceAvailable bool   `json:"live_price_available"`
	MarketCap          string `json:"market_cap"`
	PERatio            string `json:"pe_ratio"`
}

// Summary formats the live price, market cap (in billions) and P/E ratio. Absent values
// render as "unavailable", never as 0.
func Summary(b entity.DisplayBundle) SummaryPanel {
	p := SummaryPanel{
		LivePrice: LivePriceUnavailable,
		MarketCap: "Market Cap: unavailable",
		PERatio:   "P/E Ratio: unavailable",
	}
	if b.LivePrice.Valid && finite(b.LivePrice.Float64) {
		p.LivePrice = "Live Price (Today): " + decimal.NewFromFloat(b.LivePrice.Float64).StringFixed(2)
		p.LivePriceAvailable = true
	}
	if v, err := b.Summary.MarketCapValue(); err == nil && finite(v) {
		p.MarketCap = "Market Cap: " + decimal.NewFromFloat(v).Div(billion).StringFixed(2) + "B"
	}
	if v, err := b.Summary.PERatioValue(); err == nil && finite(v) {
		p.PERatio = "P/E Ratio: " + decimal.NewFromFloat(v).StringFixed(2)
	}
	return p
}

// decimal.NewFromFloat panics on NaN and ±Inf.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
