package model

import "time"

// Bar represents a single OHLCV candlestick at a fixed timeframe.
// Within a series bars are ordered ascending by time; the most recent bar
// of a live series may still be accumulating and must be treated as
// unconfirmed by downstream consumers.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// QuoteSnapshot holds the latest top-of-book state for one symbol.
type QuoteSnapshot struct {
	Symbol       string
	Bid          float64
	Ask          float64
	LatestPrice  float64
	OpenInterest *float64 // nil when the venue does not report it
	Timestamp    time.Time
}

// MidPrice returns the bid/ask midpoint, falling back to the latest trade
// price when either side of the book is empty.
func (q *QuoteSnapshot) MidPrice() float64 {
	if q.Bid > 0 && q.Ask > 0 {
		return (q.Bid + q.Ask) / 2
	}
	return q.LatestPrice
}

// AccountSnapshot is a point-in-time view of the trading account.
// Account reads are never cached: money decisions tolerate no staleness.
type AccountSnapshot struct {
	Cash     float64
	Equity   float64
	Currency string
}

// Position is one open holding.
type Position struct {
	Symbol string
	Qty    float64
}
