package indicator

import (
	"math"

	"TradePilot/internal/model"
)

// ATR computes the Wilder-smoothed average true range over the given
// period. Entries with index < period are NaN.
func ATR(bars []model.Bar, period int) []float64 {
	out := nanSlice(len(bars))
	if period <= 0 || len(bars) < period+1 {
		return out
	}

	tr := trueRanges(bars)

	// Seed with the simple average of the first `period` true ranges
	// (skipping index 0, which has no previous close).
	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += tr[i]
	}
	out[period] = sum / float64(period)

	for i := period + 1; i < len(bars); i++ {
		out[i] = (out[i-1]*float64(period-1) + tr[i]) / float64(period)
	}
	return out
}

func trueRanges(bars []model.Bar) []float64 {
	tr := make([]float64, len(bars))
	for i, b := range bars {
		if i == 0 {
			tr[i] = b.High - b.Low
			continue
		}
		prevClose := bars[i-1].Close
		tr[i] = math.Max(b.High-b.Low,
			math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
	}
	return tr
}
