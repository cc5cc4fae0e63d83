// Package api holds the request parameter and response models of the HTTP API described in
// api/openapi.yaml.
package api

import (
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DashboardParams defines parameters for GetDashboard, GetDashboardCSV and the HTML page.
type DashboardParams struct {
	// Symbol ticker code, one of the catalog symbols
	Symbol *string `form:"symbol,omitempty" json:"symbol,omitempty"`

	// Start first session date (inclusive)
	Start *openapi_types.Date `form:"start,omitempty" json:"start,omitempty"`

	// End last session date (inclusive)
	End *openapi_types.Date `form:"end,omitempty" json:"end,omitempty"`
}

// GetHistoryParams defines parameters for GetHistory.
type GetHistoryParams struct {
	Start openapi_types.Date `form:"start" json:"start"`
	End   openapi_types.Date `form:"end" json:"end"`
}
