// Package entity defines the domain models for the marketdata feature.
package entity

import (
	"time"
)

// DateLayout is the calendar date format used for session dates on the wire and in CSV exports.
const DateLayout = "2006-01-02"

// PriceBar represents one daily OHLCV session for a symbol.
type PriceBar struct {
	Time   time.Time // Session date, normalised to midnight UTC
	Open   float64   // Opening price
	High   float64   // Highest price during the session
	Low    float64   // Lowest price during the session
	Close  float64   // Closing price
	Volume int64     // Traded volume
}

// PriceSeries is the ordered list of daily bars for one symbol over [Start, End].
// Bars are strictly increasing by Time and every bar falls inside the range.
type PriceSeries struct {
	Symbol string
	Start  time.Time
	End    time.Time
	Bars   []PriceBar
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Closes extracts the closing prices in bar order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Times extracts the session dates in bar order.
func (s PriceSeries) Times() []time.Time {
	ts := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		ts[i] = b.Time
	}
	return ts
}

// First returns the earliest bar. It panics on an empty series.
func (s PriceSeries) First() PriceBar { return s.Bars[0] }

// Last returns the latest bar. It panics on an empty series.
func (s PriceSeries) Last() PriceBar { return s.Bars[len(s.Bars)-1] }

// Trim returns a copy of the series restricted to bars within [start, end].
func (s PriceSeries) Trim(start, end time.Time) PriceSeries {
	start, end = SessionDate(start), SessionDate(end)
	out := PriceSeries{Symbol: s.Symbol, Start: start, End: end}
	for _, b := range s.Bars {
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		out.Bars = append(out.Bars, b)
	}
	return out
}

// SessionDate truncates t to its calendar date (in t's own location) and returns it as midnight UTC.
func SessionDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a session date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
