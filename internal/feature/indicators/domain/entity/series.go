// Package entity defines the domain models for the indicators feature.
package entity

import (
	"time"

	"github.com/guregu/null/v6"
)

// Indicator names.
const (
	NameMACD       = "MACD"
	NameMACDSignal = "MACD_SIGNAL"
	NameRSI        = "RSI"
)

// Series is an indicator line aligned one-to-one with the bars it was computed from.
// Values inside the warm-up window, or derived from non-finite input, are invalid (null).
type Series struct {
	Name   string
	Times  []time.Time
	Values []null.Float
}

// NewSeries pairs computed values with their bar timestamps. The slices must have equal length.
func NewSeries(name string, times []time.Time, values []null.Float) Series {
	return Series{Name: name, Times: times, Values: values}
}

// Len returns the number of points, defined or not.
func (s Series) Len() int { return len(s.Values) }

// Defined returns how many points carry a value.
func (s Series) Defined() int {
	n := 0
	for _, v := range s.Values {
		if v.Valid {
			n++
		}
	}
	return n
}

// Last returns the latest defined value, or an invalid value if none is defined.
func (s Series) Last() null.Float {
	for i := len(s.Values) - 1; i >= 0; i-- {
		if s.Values[i].Valid {
			return s.Values[i]
		}
	}
	return null.Float{}
}

// Slice returns the points in [from, to).
func (s Series) Slice(from, to int) Series {
	return Series{Name: s.Name, Times: s.Times[from:to], Values: s.Values[from:to]}
}
