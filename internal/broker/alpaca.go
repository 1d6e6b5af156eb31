package broker

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"TradePilot/internal/model"
)

const (
	paperTradingURL = "https://paper-api.alpaca.markets"
	liveTradingURL  = "https://api.alpaca.markets"

	// Lookback window multiplier: markets are closed most of the time,
	// so fetching limit*period of wall-clock history is not enough.
	lookbackFactor = 6
)

// AlpacaBroker implements Broker against the Alpaca trading and market
// data APIs.
type AlpacaBroker struct {
	trading *alpaca.Client
	md      *marketdata.Client
}

// NewAlpacaBroker creates a broker client. When paper is true the paper
// trading endpoint is used; market data is served from the same feed
// either way.
func NewAlpacaBroker(apiKey, apiSecret string, paper bool) *AlpacaBroker {
	baseURL := liveTradingURL
	if paper {
		baseURL = paperTradingURL
	}
	return &AlpacaBroker{
		trading: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
		md: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
	}
}

// GetQuotes fetches one batched snapshot for all symbols and normalizes
// each into a QuoteSnapshot. Symbols the venue has no data for are left
// out of the result.
func (b *AlpacaBroker) GetQuotes(symbols []string) (map[string]model.QuoteSnapshot, error) {
	if len(symbols) == 0 {
		return map[string]model.QuoteSnapshot{}, nil
	}
	snapshots, err := b.md.GetSnapshots(symbols, marketdata.GetSnapshotRequest{})
	if err != nil {
		return nil, fmt.Errorf("get snapshots: %w", err)
	}

	out := make(map[string]model.QuoteSnapshot, len(snapshots))
	for sym, snap := range snapshots {
		if snap == nil {
			continue
		}
		q := model.QuoteSnapshot{Symbol: sym}
		if snap.LatestQuote != nil {
			q.Bid = snap.LatestQuote.BidPrice
			q.Ask = snap.LatestQuote.AskPrice
			q.Timestamp = snap.LatestQuote.Timestamp
		}
		if snap.LatestTrade != nil {
			q.LatestPrice = snap.LatestTrade.Price
			if q.Timestamp.IsZero() {
				q.Timestamp = snap.LatestTrade.Timestamp
			}
		}
		// Equities carry no open interest; the field stays nil and the
		// payload reports it as absent.
		out[sym] = q
	}
	return out, nil
}

// GetBars fetches bar series for all symbols in one batched request and
// returns up to limit ascending bars per symbol.
func (b *AlpacaBroker) GetBars(symbols []string, period string, limit int) (map[string][]model.Bar, error) {
	if len(symbols) == 0 {
		return map[string][]model.Bar{}, nil
	}
	tf, per, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	start := time.Now().Add(-time.Duration(limit*lookbackFactor) * per)
	multiBars, err := b.md.GetMultiBars(symbols, marketdata.GetBarsRequest{
		TimeFrame: tf,
		Start:     start,
	})
	if err != nil {
		return nil, fmt.Errorf("get %s bars: %w", period, err)
	}

	out := make(map[string][]model.Bar, len(multiBars))
	for sym, raw := range multiBars {
		bars := make([]model.Bar, len(raw))
		for i, rb := range raw {
			bars[i] = model.Bar{
				Time:   rb.Timestamp,
				Open:   rb.Open,
				High:   rb.High,
				Low:    rb.Low,
				Close:  rb.Close,
				Volume: float64(rb.Volume),
			}
		}
		sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
		if len(bars) > limit {
			bars = bars[len(bars)-limit:]
		}
		out[sym] = bars
	}
	return out, nil
}

// GetAccount returns the current cash and equity balances.
func (b *AlpacaBroker) GetAccount() (model.AccountSnapshot, error) {
	acct, err := b.trading.GetAccount()
	if err != nil {
		return model.AccountSnapshot{}, fmt.Errorf("get account: %w", err)
	}
	cash, _ := acct.Cash.Float64()
	equity, _ := acct.Equity.Float64()
	return model.AccountSnapshot{
		Cash:     cash,
		Equity:   equity,
		Currency: acct.Currency,
	}, nil
}

// GetPositions returns all open positions.
func (b *AlpacaBroker) GetPositions() ([]model.Position, error) {
	positions, err := b.trading.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}
	out := make([]model.Position, 0, len(positions))
	for _, p := range positions {
		qty, _ := p.Qty.Float64()
		out = append(out, model.Position{Symbol: p.Symbol, Qty: qty})
	}
	return out, nil
}

// PlaceOrder submits a day market order for whole shares.
func (b *AlpacaBroker) PlaceOrder(symbol string, side Side, qty int64) (string, error) {
	if qty <= 0 {
		return "", fmt.Errorf("invalid order quantity %d for %s", qty, symbol)
	}
	qtyDec := decimal.NewFromInt(qty)
	order, err := b.trading.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      symbol,
		Qty:         &qtyDec,
		Side:        alpaca.Side(side),
		Type:        alpaca.Market,
		TimeInForce: alpaca.Day,
	})
	if err != nil {
		return "", fmt.Errorf("place %s order for %s: %w", side, symbol, err)
	}
	return order.ID, nil
}

// AssetName resolves the asset's display name, falling back to the
// symbol itself when the lookup fails upstream.
func (b *AlpacaBroker) AssetName(symbol string) (string, error) {
	asset, err := b.trading.GetAsset(symbol)
	if err != nil {
		return "", fmt.Errorf("get asset %s: %w", symbol, err)
	}
	if asset.Name == "" {
		return symbol, nil
	}
	return asset.Name, nil
}

// ParsePeriod converts a period string like "5Min", "4Hour" or "1Day"
// into an Alpaca timeframe plus the wall-clock duration of one bar.
func ParsePeriod(period string) (marketdata.TimeFrame, time.Duration, error) {
	s := strings.TrimSpace(period)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i == len(s) {
		return marketdata.TimeFrame{}, 0, fmt.Errorf("invalid period %q", period)
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil || n <= 0 {
		return marketdata.TimeFrame{}, 0, fmt.Errorf("invalid period %q", period)
	}

	switch strings.ToLower(s[i:]) {
	case "min", "minute", "minutes":
		return marketdata.NewTimeFrame(n, marketdata.Min), time.Duration(n) * time.Minute, nil
	case "hour", "hours":
		return marketdata.NewTimeFrame(n, marketdata.Hour), time.Duration(n) * time.Hour, nil
	case "day", "days":
		return marketdata.NewTimeFrame(n, marketdata.Day), time.Duration(n) * 24 * time.Hour, nil
	default:
		return marketdata.TimeFrame{}, 0, fmt.Errorf("invalid period unit in %q", period)
	}
}
