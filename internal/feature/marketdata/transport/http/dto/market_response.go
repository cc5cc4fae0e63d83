// Package dto defines data transfer objects for the marketdata HTTP API.
package dto

import "github.com/guregu/null/v6"

// BarResponse はロウソク足1本分のレスポンスDTOです。
type BarResponse struct {
	Date   string  `json:"date"`   // 日付 (YYYY-MM-DD)
	Open   float64 `json:"open"`   // 始値
	High   float64 `json:"high"`   // 高値
	Low    float64 `json:"low"`    // 安値
	Close  float64 `json:"close"`  // 終値
	Volume int64   `json:"volume"` // 出来高
}

// HistoryResponse は期間指定の日足レスポンスです。
type HistoryResponse struct {
	Symbol   string        `json:"symbol"`
	Start    string        `json:"start"`
	End      string        `json:"end"`
	Provider string        `json:"provider"`
	Bars     []BarResponse `json:"bars"`
}

// QuoteResponse は現在値と企業指標のレスポンスです。欠損値は null になります。
type QuoteResponse struct {
	Symbol    string     `json:"symbol"`
	LivePrice null.Float `json:"live_price"`
	MarketCap null.Float `json:"market_cap"`
	PERatio   null.Float `json:"pe_ratio"`
}
