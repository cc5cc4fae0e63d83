// Package engine computes technical indicators over closing prices.
//
// Every function is pure: it reads its input, allocates its output and has no other effect.
// Undefined points (warm-up, or anything downstream of a NaN/Inf input) are returned as
// invalid null.Float values rather than zeros.
package engine

import (
	"math"

	"github.com/guregu/null/v6"
)

// EMA returns the exponential moving average of values with smoothing factor 2/(period+1),
// seeded by the simple average of the first period values. Entries before index period-1 are NaN.
// A NaN or Inf input poisons every later entry.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(values) < period {
		return out
	}

	k := 2.0 / float64(period+1)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	prev := sum / float64(period)
	out[period-1] = prev

	for i := period; i < len(values); i++ {
		prev = values[i]*k + prev*(1-k)
		out[i] = prev
	}
	return out
}

// emaDefined runs EMA over the defined suffix of values starting at offset, leaving the prefix NaN.
func emaDefined(values []float64, offset, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if offset < 0 || offset >= len(values) {
		return out
	}
	copy(out[offset:], EMA(values[offset:], period))
	return out
}

// toNull converts computed floats to nullable values, treating NaN and Inf as undefined.
func toNull(values []float64) []null.Float {
	out := make([]null.Float, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[i] = null.FloatFrom(v)
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
