// Package dto defines data transfer objects for the dashboard HTTP API.
package dto

import (
	"time"

	"github.com/guregu/null/v6"

	"stock_analyzer/internal/feature/dashboard/presentation"
)

// DashboardResponse is the JSON form of one cycle: the same artifacts the HTML page renders.
type DashboardResponse struct {
	Symbol      string                    `json:"symbol"`
	Start       string                    `json:"start"`
	End         string                    `json:"end"`
	Provider    string                    `json:"provider"`
	DateRange   string                    `json:"date_range"`
	GeneratedAt time.Time                 `json:"generated_at"`
	LivePrice   null.Float                `json:"live_price"`
	MarketCap   null.Float                `json:"market_cap"`
	PERatio     null.Float                `json:"pe_ratio"`
	Summary     presentation.SummaryPanel `json:"summary"`
	Table       []presentation.Row        `json:"table"`
	Indicators  Indicators                `json:"indicators"`
	Figures     []presentation.Figure     `json:"figures"`
	ExportURL   string                    `json:"export_url"`
}

// Indicators holds the raw indicator values aligned with Table. Undefined points are null.
type Indicators struct {
	MACD       []null.Float `json:"macd"`
	MACDSignal []null.Float `json:"macd_signal"`
	RSI        []null.Float `json:"rsi"`
}
