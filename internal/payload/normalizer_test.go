package payload

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"TradePilot/internal/indicator"
	"TradePilot/internal/model"
)

func barsFromCloses(closes []float64) []model.Bar {
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Time:   time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC).Add(time.Duration(i) * 5 * time.Minute),
			Open:   c,
			High:   c + 0.1,
			Low:    c - 0.1,
			Close:  c,
			Volume: 5000,
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

func TestBuild_ExcludesUnconfirmedBar(t *testing.T) {
	// 25 rows; the last confirmed close is 10.00, the in-progress bar
	// sits at 10.50 and must never leak into the payload.
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 9.0 + float64(i)*0.01
	}
	closes[23] = 10.00
	closes[24] = 10.50

	short := indicator.Compute(barsFromCloses(closes), indicator.RoleShort)
	b := NewBuilder()
	out, err := b.Build("TEST", short, nil, nil, time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var doc struct {
		MarketState struct {
			PriceCurrent  *float64  `json:"price_current"`
			PriceSequence []float64 `json:"price_sequence"`
		} `json:"market_state"`
		Indicators struct {
			Short *ShortIndicators `json:"short_timeframe"`
		} `json:"indicators"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if doc.MarketState.PriceCurrent == nil || *doc.MarketState.PriceCurrent != 10.00 {
		t.Errorf("expected price_current 10.00, got %v", doc.MarketState.PriceCurrent)
	}
	for _, v := range doc.MarketState.PriceSequence {
		if v == 10.50 {
			t.Error("unconfirmed close leaked into price sequence")
		}
	}
	if doc.Indicators.Short == nil {
		t.Fatal("expected short block for 25-bar series")
	}
	if doc.Indicators.Short.Close == nil || *doc.Indicators.Short.Close != 10.00 {
		t.Errorf("expected short close 10.00, got %v", doc.Indicators.Short.Close)
	}
}

func TestBuild_EmptyQuoteFallsBackToConfirmedClose(t *testing.T) {
	// A snapshot with neither a priced quote nor a trade arrives as all
	// zeros; price_current must come from the confirmed close, not 0.
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 9.0 + float64(i)*0.01
	}
	closes[23] = 10.00
	closes[24] = 10.50

	short := indicator.Compute(barsFromCloses(closes), indicator.RoleShort)
	quote := &model.QuoteSnapshot{Symbol: "TEST"}

	out, err := NewBuilder().Build("TEST", short, nil, quote, time.Unix(0, 0).UTC())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if strings.Contains(out, `"price_current": 0,`) {
		t.Error("zero-price quote leaked into price_current")
	}
	if !strings.Contains(out, `"price_current": 10,`) {
		t.Errorf("expected confirmed close 10.00 as price_current:\n%s", out)
	}
}

func TestBuild_QuoteMidTakesPriority(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 10
	}
	short := indicator.Compute(barsFromCloses(closes), indicator.RoleShort)
	quote := &model.QuoteSnapshot{Symbol: "TEST", Bid: 11.0, Ask: 11.5, LatestPrice: 11.2}

	out, err := NewBuilder().Build("TEST", short, nil, quote, time.Unix(0, 0).UTC())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out, `"price_current": 11.25`) {
		t.Errorf("expected quote mid 11.25 as price_current:\n%s", out)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i)/5)*3
	}
	bars := barsFromCloses(closes)
	short := indicator.Compute(bars, indicator.RoleShort)
	long := indicator.Compute(bars, indicator.RoleLong)
	quote := &model.QuoteSnapshot{Symbol: "DET", Bid: 100, Ask: 101, LatestPrice: 100.5}
	now := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)

	b := NewBuilder()
	first, err := b.Build("DET", short, long, quote, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := b.Build("DET", short, long, quote, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if first != second {
		t.Error("payload not byte-for-byte reproducible")
	}
}

func TestBuild_InsufficientDataYieldsNullBlocks(t *testing.T) {
	short := indicator.Compute(barsFromCloses([]float64{1, 2, 3}), indicator.RoleShort)
	out, err := NewBuilder().Build("TINY", short, nil, nil, time.Unix(0, 0).UTC())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out, `"short_timeframe": null`) {
		t.Errorf("expected null short block:\n%s", out)
	}
	if !strings.Contains(out, `"long_timeframe": null`) {
		t.Errorf("expected null long block:\n%s", out)
	}
}

func TestBuild_BlocksPresentAtExactWarmupLength(t *testing.T) {
	// The engine computes columns for a series exactly at warm-up
	// length; the builder must not discard them with a stricter bound.
	short := indicator.Compute(barsFromCloses(rampCloses(indicator.WarmupShort)), indicator.RoleShort)
	long := indicator.Compute(barsFromCloses(rampCloses(indicator.WarmupLong)), indicator.RoleLong)

	out, err := NewBuilder().Build("EDGE", short, long, nil, time.Unix(0, 0).UTC())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if strings.Contains(out, `"short_timeframe": null`) {
		t.Error("short block discarded at exact warm-up length")
	}
	if strings.Contains(out, `"long_timeframe": null`) {
		t.Error("long block discarded at exact warm-up length")
	}
}

func TestRound4(t *testing.T) {
	tests := []struct {
		in    float64
		want  float64
		isNil bool
	}{
		{1.23456789, 1.2346, false},
		{0.00004, 0, false},
		{-2.55555, -2.5556, false},
		{math.NaN(), 0, true},
		{math.Inf(1), 0, true},
		{math.Inf(-1), 0, true},
	}
	for _, tt := range tests {
		got := Round4(tt.in)
		if tt.isNil {
			if got != nil {
				t.Errorf("Round4(%v): expected nil, got %v", tt.in, *got)
			}
			continue
		}
		if got == nil || *got != tt.want {
			t.Errorf("Round4(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestExtractVal_Bounds(t *testing.T) {
	col := []float64{1, math.NaN(), 3}
	if v := ExtractVal(col, -1); v != nil {
		t.Error("negative index should yield nil")
	}
	if v := ExtractVal(col, 3); v != nil {
		t.Error("out-of-range index should yield nil")
	}
	if v := ExtractVal(col, 1); v != nil {
		t.Error("NaN should yield nil")
	}
	if v := ExtractVal(col, 2); v == nil || *v != 3 {
		t.Error("expected 3")
	}
}

func TestExtractSeq_DropsUndefined(t *testing.T) {
	col := []float64{1, math.NaN(), 2, math.Inf(1), 3, 4, 5}
	got := ExtractSeq(col, 3)
	want := []float64{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if s := ExtractSeq(nil, 5); s == nil || len(s) != 0 {
		t.Error("empty input should yield empty non-nil sequence")
	}
}

func TestTrendTag(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	tests := []struct {
		name      string
		p, ms, ml *float64
		want      string
	}{
		{"bullish strong", f(110), f(105), f(100), TrendBullishStrong},
		{"bearish strong", f(100), f(105), f(110), TrendBearishStrong},
		{"correction bullish", f(104), f(105), f(100), TrendCorrectionBullish},
		{"rebound bearish", f(106), f(105), f(110), TrendReboundBearish},
		{"consolidation", f(105), f(105), f(105), TrendConsolidation},
		{"missing price", nil, f(105), f(100), TrendUnknown},
		{"missing ma", f(110), nil, f(100), TrendUnknown},
	}
	for _, tt := range tests {
		if got := TrendTag(tt.p, tt.ms, tt.ml); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, got)
		}
	}
}
