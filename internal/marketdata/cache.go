// Package marketdata keeps a short-lived cache of quotes and bars in front
// of the brokerage data API, so one scan cycle hits the network once per
// batch instead of once per symbol.
package marketdata

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"TradePilot/internal/broker"
	"TradePilot/internal/model"
)

type quoteEntry struct {
	quote   model.QuoteSnapshot
	fetched time.Time
}

type barEntry struct {
	bars    []model.Bar
	fetched time.Time
}

// Cache batches market data fetches and serves them for a bounded TTL.
// A read miss (or stale entry) triggers at most one single-symbol refresh
// before giving up, so a dead upstream cannot wedge callers in a retry loop.
type Cache struct {
	source  broker.MarketDataSource
	ttl     time.Duration
	periods []string
	limit   int

	mu     sync.Mutex
	quotes map[string]quoteEntry
	bars   map[string]barEntry

	now func() time.Time
}

// NewCache builds a cache over src. periods are the bar timeframes to
// fetch on every refresh (e.g. "5Min", "4Hour"); limit is the number of
// bars kept per symbol and period.
func NewCache(src broker.MarketDataSource, ttl time.Duration, periods []string, limit int) *Cache {
	return &Cache{
		source:  src,
		ttl:     ttl,
		periods: periods,
		limit:   limit,
		quotes:  make(map[string]quoteEntry),
		bars:    make(map[string]barEntry),
		now:     time.Now,
	}
}

func barKey(symbol, period string) string {
	return symbol + "|" + period
}

// RefreshAll fetches quotes and bars for all symbols in one batch per
// period. A failed batch is logged and skipped; the other batches still
// land, and stale entries for the failed batch stay readable until a
// later refresh succeeds.
func (c *Cache) RefreshAll(symbols []string) {
	symbols = normalize(symbols)
	if len(symbols) == 0 {
		return
	}
	fetched := c.now()

	quotes, err := c.source.GetQuotes(symbols)
	if err != nil {
		log.Printf("[WARN] quote batch fetch failed (%d symbols): %v", len(symbols), err)
	} else {
		c.mu.Lock()
		for sym, q := range quotes {
			c.quotes[sym] = quoteEntry{quote: q, fetched: fetched}
		}
		c.mu.Unlock()
	}

	for _, period := range c.periods {
		bars, err := c.source.GetBars(symbols, period, c.limit)
		if err != nil {
			log.Printf("[WARN] bar batch fetch failed (period=%s): %v", period, err)
			continue
		}
		c.mu.Lock()
		for sym, series := range bars {
			c.bars[barKey(sym, period)] = barEntry{bars: series, fetched: fetched}
		}
		c.mu.Unlock()
	}
}

// GetQuote returns a fresh quote for symbol. On a miss or an expired
// entry it refreshes that one symbol once and re-reads; if the entry is
// still missing or stale it returns ok=false.
func (c *Cache) GetQuote(symbol string) (model.QuoteSnapshot, bool) {
	symbol = strings.ToUpper(symbol)
	for attempt := 0; attempt < 2; attempt++ {
		c.mu.Lock()
		e, ok := c.quotes[symbol]
		c.mu.Unlock()
		if ok && c.now().Sub(e.fetched) < c.ttl {
			return e.quote, true
		}
		if attempt == 0 {
			c.RefreshAll([]string{symbol})
		}
	}
	return model.QuoteSnapshot{}, false
}

// GetBars returns the cached bar series for symbol at period, refreshing
// once on a miss or expiry, same contract as GetQuote.
func (c *Cache) GetBars(symbol, period string) ([]model.Bar, bool) {
	symbol = strings.ToUpper(symbol)
	key := barKey(symbol, period)
	for attempt := 0; attempt < 2; attempt++ {
		c.mu.Lock()
		e, ok := c.bars[key]
		c.mu.Unlock()
		if ok && c.now().Sub(e.fetched) < c.ttl {
			return e.bars, true
		}
		if attempt == 0 {
			c.RefreshAll([]string{symbol})
		}
	}
	return nil, false
}

// Describe reports cache contents for the status command.
func (c *Cache) Describe() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	syms := make([]string, 0, len(c.quotes))
	for s := range c.quotes {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return fmt.Sprintf("%d quotes, %d bar series (%s)", len(c.quotes), len(c.bars), strings.Join(syms, " "))
}

func normalize(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
