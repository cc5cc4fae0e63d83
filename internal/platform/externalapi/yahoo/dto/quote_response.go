package dto

import "github.com/guregu/null/v6"

// QuoteResponse represents the JSON response from the v7 quote endpoint.
type QuoteResponse struct {
	QuoteResponse struct {
		Result []Quote   `json:"result"`
		Error  *APIError `json:"error"`
	} `json:"quoteResponse"`
}

// Quote holds the fields used for the company summary. Yahoo omits trailingPE for loss-making companies.
type Quote struct {
	Symbol             string     `json:"symbol"`
	MarketCap          null.Float `json:"marketCap"`
	TrailingPE         null.Float `json:"trailingPE"`
	RegularMarketPrice null.Float `json:"regularMarketPrice"`
}
