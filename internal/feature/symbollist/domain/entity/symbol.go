// Package entity defines the domain models for the symbollist feature.
package entity

import (
	"strings"
	"time"
)

// Symbol represents a stock ticker symbol in the system.
// It contains information about a tradable security including its code,
// name, market, and display ordering.
type Symbol struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:20;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null"`
	Market    string    `gorm:"size:100;not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// DefaultSymbols is the fixed set offered by the dashboard, in display order.
var DefaultSymbols = []Symbol{
	{Code: "AAPL", Name: "Apple Inc.", Market: "NASDAQ", IsActive: true, SortKey: 1},
	{Code: "GOOG", Name: "Alphabet Inc.", Market: "NASDAQ", IsActive: true, SortKey: 2},
	{Code: "TSLA", Name: "Tesla, Inc.", Market: "NASDAQ", IsActive: true, SortKey: 3},
	{Code: "MSFT", Name: "Microsoft Corporation", Market: "NASDAQ", IsActive: true, SortKey: 4},
	{Code: "NFLX", Name: "Netflix, Inc.", Market: "NASDAQ", IsActive: true, SortKey: 5},
}

// NormalizeCode upper-cases and trims a ticker code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
