// Package dto defines data transfer objects for the Yahoo Finance chart and quote endpoints.
package dto

import "github.com/guregu/null/v6"

// ChartResponse represents the JSON response from the v8 chart endpoint.
// Price arrays contain null for sessions without a print (halts, holidays).
type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *APIError     `json:"error"`
	} `json:"chart"`
}

// ChartResult is one symbol's chart payload.
type ChartResult struct {
	Meta struct {
		Symbol               string `json:"symbol"`
		Currency             string `json:"currency"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
		GMTOffset            int64  `json:"gmtoffset"` // Seconds east of UTC
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []null.Float `json:"open"`
			High   []null.Float `json:"high"`
			Low    []null.Float `json:"low"`
			Close  []null.Float `json:"close"`
			Volume []null.Int   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// APIError is the error object Yahoo embeds in chart and quote responses.
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
