package indicator

import "math"

// MACD computes the moving average convergence/divergence line, its
// signal line, and the histogram, all aligned with the input. The line is
// defined once the slow EMA is defined; the signal needs a further
// signalPeriod defined line values.
func MACD(values []float64, fastPeriod, slowPeriod, signalPeriod int) (line, signal, hist []float64) {
	n := len(values)
	line = nanSlice(n)
	signal = nanSlice(n)
	hist = nanSlice(n)
	if n < slowPeriod {
		return line, signal, hist
	}

	fast := EMA(values, fastPeriod)
	slow := EMA(values, slowPeriod)
	for i := range values {
		if defined(fast[i]) && defined(slow[i]) {
			line[i] = fast[i] - slow[i]
		}
	}

	// EMA of the defined segment of the line.
	start := slowPeriod - 1
	seg := EMA(line[start:], signalPeriod)
	for i, v := range seg {
		if !math.IsNaN(v) {
			signal[start+i] = v
		}
	}

	for i := range values {
		if defined(line[i]) && defined(signal[i]) {
			hist[i] = line[i] - signal[i]
		}
	}
	return line, signal, hist
}
