package indicator

import (
	"math"
	"testing"
	"time"

	"TradePilot/internal/model"
)

func makeBars(closes []float64) []model.Bar {
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Time:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * 5 * time.Minute),
			Open:   c * 0.999,
			High:   c * 1.005,
			Low:    c * 0.995,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func rampCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)*0.5
	}
	return out
}

func TestCompute_ShortSeriesBelowWarmup(t *testing.T) {
	for _, n := range []int{0, 1, 10, 19} {
		s := Compute(makeBars(rampCloses(n)), RoleShort)
		for _, col := range []string{ColEMA20, ColMACD, ColMACDHist, ColRSI7, ColRSI14} {
			if s.Column(col) != nil {
				t.Errorf("n=%d: expected absent column %s", n, col)
			}
		}
	}
}

func TestCompute_LongSeriesBelowWarmup(t *testing.T) {
	s := Compute(makeBars(rampCloses(49)), RoleLong)
	for _, col := range []string{ColEMA20, ColEMA50, ColATR3, ColATR14, ColMACD, ColRSI14} {
		if s.Column(col) != nil {
			t.Errorf("expected absent column %s for 49-bar long series", col)
		}
	}
}

func TestCompute_ShortColumnsPresent(t *testing.T) {
	s := Compute(makeBars(rampCloses(60)), RoleShort)
	for _, col := range []string{ColEMA20, ColMACD, ColMACDSignal, ColMACDHist, ColRSI7, ColRSI14, ColVolRatio} {
		c := s.Column(col)
		if c == nil {
			t.Fatalf("expected column %s", col)
		}
		if len(c) != 60 {
			t.Errorf("column %s: expected length 60, got %d", col, len(c))
		}
		if !defined(c[len(c)-1]) {
			t.Errorf("column %s: expected defined last value", col)
		}
	}
}

func TestEMA_WarmupAndValues(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	out := EMA(values, 3)

	for i := 0; i < 2; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("index %d: expected NaN in warm-up, got %v", i, out[i])
		}
	}
	if out[2] != 2.0 {
		t.Errorf("seed: expected SMA 2.0, got %v", out[2])
	}
	// k = 0.5 for period 3: next = 4*0.5 + 2*0.5 = 3
	if out[3] != 3.0 {
		t.Errorf("expected 3.0, got %v", out[3])
	}
}

func TestRSI_MonotonicSeries(t *testing.T) {
	rising := rampCloses(30)
	out := RSI(rising, 14)
	if !math.IsNaN(out[13]) {
		t.Error("expected NaN before period changes accumulated")
	}
	last := out[len(out)-1]
	if last != 100.0 {
		t.Errorf("all-gains series: expected RSI 100, got %v", last)
	}

	falling := make([]float64, 30)
	for i := range falling {
		falling[i] = 200 - float64(i)
	}
	out = RSI(falling, 14)
	if v := out[len(out)-1]; v > 1e-9 {
		t.Errorf("all-losses series: expected RSI 0, got %v", v)
	}
}

func TestATR_ConstantRange(t *testing.T) {
	// Flat closes with fixed high-low spread: ATR converges to the spread.
	bars := make([]model.Bar, 30)
	for i := range bars {
		bars[i] = model.Bar{High: 102, Low: 98, Close: 100}
	}
	out := ATR(bars, 14)
	if !math.IsNaN(out[13]) {
		t.Error("expected NaN inside warm-up")
	}
	if v := out[len(out)-1]; math.Abs(v-4.0) > 1e-9 {
		t.Errorf("expected ATR 4.0, got %v", v)
	}
}

func TestMACD_Alignment(t *testing.T) {
	closes := rampCloses(60)
	line, signal, hist := MACD(closes, 12, 26, 9)

	if !math.IsNaN(line[24]) {
		t.Error("line should be undefined before slow EMA warm-up")
	}
	if math.IsNaN(line[25]) {
		t.Error("line should be defined at slow EMA warm-up")
	}
	if !math.IsNaN(signal[32]) {
		t.Error("signal should be undefined before its own warm-up")
	}
	if math.IsNaN(signal[33]) {
		t.Error("signal should be defined after 9 line values")
	}
	for i := range closes {
		if defined(hist[i]) != (defined(line[i]) && defined(signal[i])) {
			t.Errorf("index %d: histogram definedness misaligned", i)
		}
		if defined(hist[i]) && math.Abs(hist[i]-(line[i]-signal[i])) > 1e-12 {
			t.Errorf("index %d: histogram != line - signal", i)
		}
	}
}
