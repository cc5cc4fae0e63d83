package dto

import "github.com/guregu/null/v6"

// StatisticsResponse represents the JSON response from the Twelve Data statistics endpoint.
type StatisticsResponse struct {
	Status     string `json:"status"`
	Code       int    `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
	Statistics struct {
		ValuationsMetrics struct {
			MarketCapitalization null.Float `json:"market_capitalization"`
			TrailingPE           null.Float `json:"trailing_pe"`
		} `json:"valuations_metrics"`
	} `json:"statistics"`
}
