package engine

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func assertUndefinedPrefix(t *testing.T, values []null.Float, n int) {
	t.Helper()
	for i := 0; i < n && i < len(values); i++ {
		assert.False(t, values[i].Valid, "index %d should be undefined", i)
	}
}

// ────────────────────────────────────────────────────────────
// EMA
// ────────────────────────────────────────────────────────────

func TestEMA_Correctness_Period3(t *testing.T) {
	// Prices: 1, 2, 3, 4, 5   k = 2/(3+1) = 0.5
	// Seed at index 2: (1+2+3)/3 = 2
	// index 3: 4*0.5 + 2*0.5 = 3
	// index 4: 5*0.5 + 3*0.5 = 4
	got := EMA([]float64{1, 2, 3, 4, 5}, 3)

	require.Len(t, got, 5)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 2.0, got[2], 1e-12)
	assert.InDelta(t, 3.0, got[3], 1e-12)
	assert.InDelta(t, 4.0, got[4], 1e-12)
}

func TestEMA_ShortInputIsAllNaN(t *testing.T) {
	for _, v := range EMA([]float64{1, 2}, 3) {
		assert.True(t, math.IsNaN(v))
	}
}

// ────────────────────────────────────────────────────────────
// MACD
// ────────────────────────────────────────────────────────────

func TestComputeMACD_HandCalculated(t *testing.T) {
	// fast=2 (k=2/3), slow=3 (k=1/2) over 1..5
	// EMA2: idx1 1.5, idx2 2.5, idx3 3.5, idx4 4.5
	// EMA3: idx2 2.0, idx3 3.0, idx4 4.0
	// MACD: idx2..4 = 0.5
	got, err := ComputeMACD([]float64{1, 2, 3, 4, 5}, 2, 3, 2)
	require.NoError(t, err)
	require.Len(t, got, 5)

	assertUndefinedPrefix(t, got, 2)
	for i := 2; i < 5; i++ {
		require.True(t, got[i].Valid, "index %d", i)
		assert.InDelta(t, 0.5, got[i].Float64, 1e-12)
	}
}

func TestComputeMACD_ConstantSeriesIsZero(t *testing.T) {
	closes := constant(60, 187.25)

	got, err := ComputeMACD(closes, DefaultFastPeriod, DefaultSlowPeriod, DefaultSignalPeriod)
	require.NoError(t, err)
	require.Len(t, got, len(closes))

	assertUndefinedPrefix(t, got, DefaultSlowPeriod-1)
	for i := DefaultSlowPeriod - 1; i < len(got); i++ {
		require.True(t, got[i].Valid)
		assert.InDelta(t, 0.0, got[i].Float64, 1e-9, "index %d", i)
	}
}

func TestComputeMACD_ExactlySlowLength(t *testing.T) {
	got, err := ComputeMACD(ramp(26, 100, 1), 12, 26, 9)
	require.NoError(t, err)

	assert.Len(t, got, 26)
	assertUndefinedPrefix(t, got, 25)
	assert.True(t, got[25].Valid)
}

func TestComputeMACD_Errors(t *testing.T) {
	tests := []struct {
		name         string
		closes       []float64
		fast         int
		slow         int
		signal       int
		wantPeriod   bool
		wantRequired int
	}{
		{name: "shorter than slow", closes: ramp(25, 1, 1), fast: 12, slow: 26, signal: 9, wantRequired: 26},
		{name: "empty input", closes: nil, fast: 12, slow: 26, signal: 9, wantRequired: 26},
		{name: "fast not below slow", closes: ramp(40, 1, 1), fast: 26, slow: 26, signal: 9, wantPeriod: true},
		{name: "negative fast", closes: ramp(40, 1, 1), fast: -1, slow: 26, signal: 9, wantPeriod: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeMACD(tt.closes, tt.fast, tt.slow, tt.signal)
			require.Error(t, err)
			assert.Nil(t, got)

			if tt.wantPeriod {
				assert.ErrorIs(t, err, ErrInvalidPeriod)
				return
			}
			var ide *InsufficientDataError
			require.True(t, errors.As(err, &ide))
			assert.Equal(t, "MACD", ide.Indicator)
			assert.Equal(t, tt.wantRequired, ide.Required)
			assert.Equal(t, len(tt.closes), ide.Got)
		})
	}
}

func TestComputeMACD_IgnoresSignalPeriod(t *testing.T) {
	closes := ramp(40, 100, 0.5)

	want, err := ComputeMACD(closes, 12, 26, 9)
	require.NoError(t, err)
	for _, signal := range []int{0, -3} {
		got, err := ComputeMACD(closes, 12, 26, signal)
		require.NoError(t, err, "signal %d", signal)
		assert.Equal(t, want, got)
	}
}

func TestComputeMACDSignal_InvalidSignalPeriod(t *testing.T) {
	for _, signal := range []int{0, -1} {
		got, err := ComputeMACDSignal(ramp(40, 1, 1), 12, 26, signal)
		assert.ErrorIs(t, err, ErrInvalidPeriod, "signal %d", signal)
		assert.Nil(t, got)
	}
}

func TestComputeMACD_NaNPropagatesAsUndefined(t *testing.T) {
	closes := ramp(40, 100, 0.5)
	closes[30] = math.NaN()

	got, err := ComputeMACD(closes, 12, 26, 9)
	require.NoError(t, err)

	assert.True(t, got[29].Valid)
	for i := 30; i < len(got); i++ {
		assert.False(t, got[i].Valid, "index %d", i)
	}
}

func TestComputeMACD_InfPropagatesAsUndefined(t *testing.T) {
	closes := ramp(40, 100, 0.5)
	closes[35] = math.Inf(1)

	got, err := ComputeMACD(closes, 12, 26, 9)
	require.NoError(t, err)

	assert.True(t, got[34].Valid)
	assert.False(t, got[35].Valid)
}

func TestComputeMACDSignal(t *testing.T) {
	// MACD line from the hand-calculated case is 0.5 from index 2;
	// EMA(2) of that seeds at index 3 with 0.5.
	got, err := ComputeMACDSignal([]float64{1, 2, 3, 4, 5}, 2, 3, 2)
	require.NoError(t, err)

	assertUndefinedPrefix(t, got, 3)
	assert.InDelta(t, 0.5, got[3].Float64, 1e-12)
	assert.InDelta(t, 0.5, got[4].Float64, 1e-12)
}

func TestComputeMACDSignal_NotEnoughDefinedPoints(t *testing.T) {
	got, err := ComputeMACDSignal(ramp(30, 10, 1), 12, 26, 9)
	require.NoError(t, err)

	assert.Len(t, got, 30)
	for _, v := range got {
		assert.False(t, v.Valid)
	}
}

// ────────────────────────────────────────────────────────────
// RSI
// ────────────────────────────────────────────────────────────

func TestComputeRSI_HandCalculated(t *testing.T) {
	// period=2, closes 1,2,1,2 -> changes +1,-1,+1
	// seed: avgGain=(1+0)/2=0.5 avgLoss=(0+1)/2=0.5 -> RSI 50
	// next: avgGain=(0.5+1)/2=0.75 avgLoss=(0.5+0)/2=0.25 -> RS 3 -> RSI 75
	got, err := ComputeRSI([]float64{1, 2, 1, 2}, 2)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assertUndefinedPrefix(t, got, 2)
	assert.InDelta(t, 50.0, got[2].Float64, 1e-12)
	assert.InDelta(t, 75.0, got[3].Float64, 1e-12)
}

func TestComputeRSI_Trends(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{name: "strictly increasing goes to 100", closes: ramp(40, 50, 1.25), want: 100},
		{name: "strictly decreasing goes to 0", closes: ramp(40, 500, -3), want: 0},
		{name: "flat has no loss and reads 100", closes: constant(20, 42), want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeRSI(tt.closes, DefaultRSIPeriod)
			require.NoError(t, err)

			assertUndefinedPrefix(t, got, DefaultRSIPeriod)
			for i := DefaultRSIPeriod; i < len(got); i++ {
				require.True(t, got[i].Valid)
				assert.InDelta(t, tt.want, got[i].Float64, 1e-9, "index %d", i)
			}
		})
	}
}

func TestComputeRSI_AlwaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(20190706))

	for run := 0; run < 50; run++ {
		closes := make([]float64, 15+rng.Intn(200))
		price := 100.0
		for i := range closes {
			price += rng.NormFloat64() * 5
			closes[i] = price
		}

		got, err := ComputeRSI(closes, DefaultRSIPeriod)
		require.NoError(t, err)
		for i, v := range got[DefaultRSIPeriod:] {
			require.True(t, v.Valid)
			assert.GreaterOrEqual(t, v.Float64, 0.0, "run %d index %d", run, i)
			assert.LessOrEqual(t, v.Float64, 100.0, "run %d index %d", run, i)
		}
	}
}

func TestComputeRSI_Errors(t *testing.T) {
	_, err := ComputeRSI(ramp(14, 1, 1), 14)
	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, "RSI", ide.Indicator)
	assert.Equal(t, 15, ide.Required)
	assert.Equal(t, 14, ide.Got)
	assert.EqualError(t, err, "RSI needs at least 15 closes, got 14")

	_, err = ComputeRSI(ramp(30, 1, 1), 0)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestComputeRSI_NaNPropagatesAsUndefined(t *testing.T) {
	closes := ramp(30, 100, 1)
	closes[20] = math.NaN()

	got, err := ComputeRSI(closes, 14)
	require.NoError(t, err)

	assert.True(t, got[19].Valid)
	for i := 20; i < len(got); i++ {
		assert.False(t, got[i].Valid, "index %d", i)
	}
}

func TestComputeRSI_Deterministic(t *testing.T) {
	closes := []float64{44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00}

	a, err := ComputeRSI(closes, 14)
	require.NoError(t, err)
	b, err := ComputeRSI(closes, 14)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	// gains 3.34 / losses 1.40 over 14 changes -> RS 2.3857 -> RSI 70.46
	assert.InDelta(t, 70.46, a[14].Float64, 0.01)
}
