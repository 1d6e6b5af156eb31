// Package payload turns indicator series and quote snapshots into the
// normalized JSON document sent to the language model.
//
// The guard that matters here: the analysis must reflect only confirmed
// bars. The final row of any live series is still accumulating, so every
// "current" value is read from the second-to-last row and every sequence
// stops before the last row. Skipping this produces repainting signals.
package payload

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"TradePilot/internal/indicator"
	"TradePilot/internal/model"
)

// Default sequence lengths.
const (
	DefaultPriceSeqLen = 60
	DefaultOscSeqLen   = 10
)

// Document is the analysis payload. Field order is fixed and marshalling
// is deterministic: identical inputs produce identical bytes.
type Document struct {
	Symbol      string      `json:"symbol"`
	Timestamp   string      `json:"timestamp"`
	Note        string      `json:"note"`
	MarketState MarketState `json:"market_state"`
	Indicators  Indicators  `json:"indicators"`
}

// MarketState carries the real-time view of the symbol.
type MarketState struct {
	PriceCurrent  *float64  `json:"price_current"`
	OpenInterest  *float64  `json:"open_interest"`
	PriceSequence []float64 `json:"price_sequence"`
}

// Indicators groups both timeframes. A nil timeframe means the series was
// too short to compute anything trustworthy.
type Indicators struct {
	Short *ShortIndicators `json:"short_timeframe"`
	Long  *LongIndicators  `json:"long_timeframe"`
}

// ShortIndicators is the intraday micro-structure block.
type ShortIndicators struct {
	Close        *float64  `json:"close"`
	Volume       int64     `json:"volume"`
	EMA20        *float64  `json:"ema20"`
	MACDHist     *float64  `json:"macd_hist"`
	MACDHistPrev *float64  `json:"macd_hist_prev"`
	MACDHistSeq  []float64 `json:"macd_hist_seq"`
	RSI7         *float64  `json:"rsi7"`
	RSI14        *float64  `json:"rsi14"`
	RSI7Seq      []float64 `json:"rsi7_seq"`
	VolumeRatio  *float64  `json:"volume_ratio"`
}

// LongIndicators is the macro trend/volatility block.
type LongIndicators struct {
	TrendTag string   `json:"trend_tag"`
	EMA20    *float64 `json:"ema20"`
	EMA50    *float64 `json:"ema50"`
	ATR3     *float64 `json:"atr3"`
	ATR14    *float64 `json:"atr14"`
	MACD     *float64 `json:"macd"`
	RSI14    *float64 `json:"rsi14"`
}

// Trend tags classifying the price / short EMA / long EMA ordering.
const (
	TrendBullishStrong     = "Bullish_Strong"
	TrendBearishStrong     = "Bearish_Strong"
	TrendCorrectionBullish = "Correction_Bullish"
	TrendReboundBearish    = "Rebound_Bearish"
	TrendConsolidation     = "Consolidation"
	TrendUnknown           = "Unknown"
)

// Builder assembles analysis payloads.
type Builder struct {
	PriceSeqLen int
	OscSeqLen   int
}

// NewBuilder returns a Builder with default sequence lengths.
func NewBuilder() *Builder {
	return &Builder{PriceSeqLen: DefaultPriceSeqLen, OscSeqLen: DefaultOscSeqLen}
}

// Build assembles the payload document and serializes it. The quote may
// be nil; either series may be nil or too short, in which case the
// corresponding block is null rather than fabricated.
func (b *Builder) Build(symbol string, short, long *indicator.Series, quote *model.QuoteSnapshot, now time.Time) (string, error) {
	doc := Document{
		Symbol:    symbol,
		Timestamp: now.Format("2006-01-02 15:04:05"),
		Note:      "Analysis based on completed bars only (lagged by one period).",
	}

	doc.MarketState = b.buildMarketState(short, quote)
	doc.Indicators.Short = b.buildShort(short)
	doc.Indicators.Long = b.buildLong(long)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

func (b *Builder) buildMarketState(short *indicator.Series, quote *model.QuoteSnapshot) MarketState {
	state := MarketState{PriceSequence: []float64{}}

	if quote != nil {
		// A quote with no priced side is no quote at all; let the
		// confirmed-close fallback handle it.
		if mid := quote.MidPrice(); mid > 0 {
			state.PriceCurrent = Round4(mid)
		}
		if quote.OpenInterest != nil {
			state.OpenInterest = Round4(*quote.OpenInterest)
		}
	}
	// Fall back to the last confirmed close when no live quote is usable.
	if state.PriceCurrent == nil && short.Len() >= 2 {
		state.PriceCurrent = Round4(short.Bars[short.Len()-2].Close)
	}

	if short.Len() >= 2 {
		state.PriceSequence = ExtractSeq(confirmed(short.Closes()), b.PriceSeqLen)
	}
	return state
}

func (b *Builder) buildShort(s *indicator.Series) *ShortIndicators {
	if s.Len() < indicator.WarmupShort || s.Column(indicator.ColEMA20) == nil {
		return nil
	}
	curr := s.Len() - 2 // last confirmed row
	prev := s.Len() - 3

	out := &ShortIndicators{
		Close:        Round4(s.Bars[curr].Close),
		EMA20:        ExtractVal(s.Column(indicator.ColEMA20), curr),
		MACDHist:     ExtractVal(s.Column(indicator.ColMACDHist), curr),
		MACDHistPrev: ExtractVal(s.Column(indicator.ColMACDHist), prev),
		MACDHistSeq:  ExtractSeq(confirmed(s.Column(indicator.ColMACDHist)), b.OscSeqLen),
		RSI7:         ExtractVal(s.Column(indicator.ColRSI7), curr),
		RSI14:        ExtractVal(s.Column(indicator.ColRSI14), curr),
		RSI7Seq:      ExtractSeq(confirmed(s.Column(indicator.ColRSI7)), b.OscSeqLen),
		VolumeRatio:  ExtractVal(s.Column(indicator.ColVolRatio), curr),
	}
	out.Volume = int64(s.Bars[curr].Volume)
	return out
}

func (b *Builder) buildLong(s *indicator.Series) *LongIndicators {
	if s.Len() < indicator.WarmupLong || s.Column(indicator.ColEMA50) == nil {
		return nil
	}
	curr := s.Len() - 2

	price := Round4(s.Bars[curr].Close)
	e20 := ExtractVal(s.Column(indicator.ColEMA20), curr)
	e50 := ExtractVal(s.Column(indicator.ColEMA50), curr)

	return &LongIndicators{
		TrendTag: TrendTag(price, e20, e50),
		EMA20:    e20,
		EMA50:    e50,
		ATR3:     ExtractVal(s.Column(indicator.ColATR3), curr),
		ATR14:    ExtractVal(s.Column(indicator.ColATR14), curr),
		MACD:     ExtractVal(s.Column(indicator.ColMACD), curr),
		RSI14:    ExtractVal(s.Column(indicator.ColRSI14), curr),
	}
}

// TrendTag classifies the relationship among price and the short/long
// moving averages using strict orderings. Any missing input yields
// Unknown rather than a guess.
func TrendTag(price, maShort, maLong *float64) string {
	if price == nil || maShort == nil || maLong == nil {
		return TrendUnknown
	}
	p, ms, ml := *price, *maShort, *maLong
	switch {
	case p > ms && ms > ml:
		return TrendBullishStrong
	case p < ms && ms < ml:
		return TrendBearishStrong
	case p > ml && p < ms:
		return TrendCorrectionBullish
	case p < ml && p > ms:
		return TrendReboundBearish
	default:
		return TrendConsolidation
	}
}

// ExtractVal reads one value from a column, rounded to 4 decimal places.
// Out-of-range indexes and NaN/Inf values yield nil, never a fabricated
// number.
func ExtractVal(col []float64, idx int) *float64 {
	if idx < 0 || idx >= len(col) {
		return nil
	}
	return Round4(col[idx])
}

// ExtractSeq returns the last n defined values of a column, each rounded
// to 4 decimal places. NaN/Inf entries are dropped silently; the result
// is empty (never nil) when nothing usable remains.
func ExtractSeq(col []float64, n int) []float64 {
	out := []float64{}
	if n <= 0 {
		return out
	}
	for _, v := range col {
		if r := Round4(v); r != nil {
			out = append(out, *r)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// Round4 rounds to 4 decimal places, mapping NaN/Inf to nil.
func Round4(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := math.Round(v*10000) / 10000
	return &r
}

// confirmed drops the final (possibly still accumulating) entry.
func confirmed(col []float64) []float64 {
	if len(col) == 0 {
		return col
	}
	return col[:len(col)-1]
}
