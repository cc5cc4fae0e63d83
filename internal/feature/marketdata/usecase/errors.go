package usecase

import (
	"errors"
	"fmt"
)

// Gateway operation names, used in errors, logs and metrics labels.
const (
	OpHistory   = "history"
	OpLivePrice = "live_price"
	OpSummary   = "summary"
)

var (
	// ErrNoData is returned when the provider answered successfully but had no bars for the request.
	ErrNoData = errors.New("no data returned")

	// ErrUnknownSymbol is returned by providers when the ticker does not exist or is delisted.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrInvalidRange is returned when the start date is after the end date.
	ErrInvalidRange = errors.New("invalid date range")
)

// FetchError wraps any failure of a provider call for a given symbol and operation.
// The cause stays reachable through errors.Is / errors.As.
type FetchError struct {
	Symbol   string
	Op       string
	Provider string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s for %s from %s: %v", e.Op, e.Symbol, e.Provider, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
