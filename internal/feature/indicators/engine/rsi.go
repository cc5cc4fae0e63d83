package engine

import (
	"fmt"
	"math"

	"github.com/guregu/null/v6"
)

// DefaultRSIPeriod is the standard RSI window.
const DefaultRSIPeriod = 14

// ComputeRSI returns Wilder's Relative Strength Index aligned with closes.
//
// The first average gain/loss is the simple mean of the first period changes; each later step is
// avg = (prev*(period-1) + current) / period. RSI = 100 - 100/(1+RS), 100 when the average loss
// is zero, clamped to [0, 100]. The first period entries are undefined.
// Fails with *InsufficientDataError when len(closes) <= period.
func ComputeRSI(closes []float64, period int) ([]null.Float, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: rsi(%d)", ErrInvalidPeriod, period)
	}
	if len(closes) <= period {
		return nil, &InsufficientDataError{Indicator: "RSI", Required: period + 1, Got: len(closes)}
	}

	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}

	p := float64(period)
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= p
	avgLoss /= p
	out[period] = rsi(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsi(avgGain, avgLoss)
	}
	return toNull(out), nil
}

// split separates a price change into its gain and loss parts. NaN stays NaN on both sides.
func split(change float64) (gain, loss float64) {
	switch {
	case math.IsNaN(change):
		return change, change
	case change > 0:
		return change, 0
	default:
		return 0, -change
	}
}

func rsi(avgGain, avgLoss float64) float64 {
	if !isFinite(avgGain) || !isFinite(avgLoss) {
		return math.NaN()
	}
	if avgLoss == 0 {
		return 100
	}
	v := 100 - 100/(1+avgGain/avgLoss)
	return math.Max(0, math.Min(100, v))
}
