// Package dto defines data transfer objects for the symbollist HTTP API.
package dto

// SymbolItem is one entry of the symbol selector.
type SymbolItem struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Market  string `json:"market"`
	Default bool   `json:"default"` // 初期表示で選択される銘柄
}
