package engine

import (
	"fmt"

	"github.com/guregu/null/v6"
)

// Standard MACD windows.
const (
	DefaultFastPeriod   = 12
	DefaultSlowPeriod   = 26
	DefaultSignalPeriod = 9
)

// ComputeMACD returns the MACD line, EMA(fast) - EMA(slow), aligned with closes.
// The first slow-1 entries are undefined. Fails with *InsufficientDataError when len(closes) < slow.
// signal does not affect the line and is not validated here.
func ComputeMACD(closes []float64, fast, slow, signal int) ([]null.Float, error) {
	line, err := macdLine(closes, fast, slow)
	if err != nil {
		return nil, err
	}
	return toNull(line), nil
}

// ComputeMACDSignal returns the signal line: EMA(signal) of the defined part of the MACD line.
// It is undefined for the first slow+signal-2 entries, and entirely undefined when the MACD line
// has fewer than signal defined points.
func ComputeMACDSignal(closes []float64, fast, slow, signal int) ([]null.Float, error) {
	if signal <= 0 {
		return nil, fmt.Errorf("%w: macd signal %d", ErrInvalidPeriod, signal)
	}
	line, err := macdLine(closes, fast, slow)
	if err != nil {
		return nil, err
	}
	return toNull(emaDefined(line, slow-1, signal)), nil
}

func macdLine(closes []float64, fast, slow int) ([]float64, error) {
	if fast <= 0 || slow <= 0 || fast >= slow {
		return nil, fmt.Errorf("%w: macd(%d, %d)", ErrInvalidPeriod, fast, slow)
	}
	if len(closes) < slow {
		return nil, &InsufficientDataError{Indicator: "MACD", Required: slow, Got: len(closes)}
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	line := make([]float64, len(closes))
	for i := range closes {
		// slowEMA is NaN before slow-1, which carries through the subtraction
		line[i] = fastEMA[i] - slowEMA[i]
	}
	return line, nil
}
