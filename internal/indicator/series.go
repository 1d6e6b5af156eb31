// Package indicator computes technical indicator columns over OHLCV bar
// series. Derived columns are aligned index-for-index with the bars;
// values inside the warm-up window are NaN and must be treated as absent
// by consumers, never substituted.
package indicator

import "TradePilot/internal/model"

// Role declares which timeframe a series plays in the analysis, which
// determines the indicator set and the minimum warm-up length.
type Role int

const (
	// RoleShort is the intraday micro-structure timeframe.
	RoleShort Role = iota
	// RoleLong is the macro trend/volatility timeframe.
	RoleLong
)

// Warm-up lengths. A series shorter than its role's warm-up gets no
// derived columns at all: a partially-populated table is preferable to
// garbage values, and downstream code treats absent columns as
// "insufficient data".
const (
	WarmupShort = 20
	WarmupLong  = 50
)

// Derived column names.
const (
	ColEMA20      = "ema20"
	ColEMA50      = "ema50"
	ColMACD       = "macd"
	ColMACDSignal = "macd_signal"
	ColMACDHist   = "macd_hist"
	ColRSI7       = "rsi7"
	ColRSI14      = "rsi14"
	ColATR3       = "atr3"
	ColATR14      = "atr14"
	ColVolRatio   = "vol_ratio"
)

// Series is a bar table augmented with derived numeric columns.
type Series struct {
	Bars []model.Bar
	cols map[string][]float64
}

// Len returns the number of bars.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Column returns the named derived column, or nil when it was not
// computed (unknown name or insufficient warm-up data).
func (s *Series) Column(name string) []float64 {
	if s == nil {
		return nil
	}
	return s.cols[name]
}

// Closes returns the close prices of all bars.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Compute derives the indicator columns appropriate for the given role.
// Bars must be ascending by time.
func Compute(bars []model.Bar, role Role) *Series {
	s := &Series{Bars: bars, cols: make(map[string][]float64)}

	switch role {
	case RoleShort:
		if len(bars) < WarmupShort {
			return s
		}
		closes := s.Closes()
		s.cols[ColEMA20] = EMA(closes, 20)
		line, signal, hist := MACD(closes, 12, 26, 9)
		s.cols[ColMACD] = line
		s.cols[ColMACDSignal] = signal
		s.cols[ColMACDHist] = hist
		s.cols[ColRSI7] = RSI(closes, 7)
		s.cols[ColRSI14] = RSI(closes, 14)
		s.cols[ColVolRatio] = volumeRatio(bars, 20)

	case RoleLong:
		if len(bars) < WarmupLong {
			return s
		}
		closes := s.Closes()
		s.cols[ColEMA20] = EMA(closes, 20)
		s.cols[ColEMA50] = EMA(closes, 50)
		s.cols[ColATR3] = ATR(bars, 3)
		s.cols[ColATR14] = ATR(bars, 14)
		line, _, _ := MACD(closes, 12, 26, 9)
		s.cols[ColMACD] = line
		s.cols[ColRSI14] = RSI(closes, 14)
	}
	return s
}

// volumeRatio is each bar's volume relative to its trailing average.
func volumeRatio(bars []model.Bar, period int) []float64 {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	avg := SMA(vols, period)
	out := nanSlice(len(bars))
	for i := range bars {
		if defined(avg[i]) && avg[i] > 0 {
			out[i] = vols[i] / avg[i]
		}
	}
	return out
}
