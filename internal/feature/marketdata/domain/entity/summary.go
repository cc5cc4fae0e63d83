package entity

import (
	"fmt"

	"github.com/guregu/null/v6"
)

// Field names reported by MissingFieldError.
const (
	FieldMarketCap = "market_cap"
	FieldPERatio   = "pe_ratio"
)

// Summary holds static company metadata. Every field is optional: a loss-making company has no
// trailing P/E, and some providers omit market cap for certain listings.
type Summary struct {
	MarketCap null.Float // Market capitalisation in the quote currency
	PERatio   null.Float // Trailing twelve-month price/earnings ratio
}

// MissingFieldError reports that an optional metadata field was not supplied by the provider.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s unavailable", e.Field)
}

// MarketCapValue returns the market cap or a *MissingFieldError when it is absent.
func (s Summary) MarketCapValue() (float64, error) {
	if !s.MarketCap.Valid {
		return 0, &MissingFieldError{Field: FieldMarketCap}
	}
	return s.MarketCap.Float64, nil
}

// PERatioValue returns the trailing P/E or a *MissingFieldError when it is absent.
func (s Summary) PERatioValue() (float64, error) {
	if !s.PERatio.Valid {
		return 0, &MissingFieldError{Field: FieldPERatio}
	}
	return s.PERatio.Float64, nil
}
