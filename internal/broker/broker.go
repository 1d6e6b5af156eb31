// Package broker defines the collaborator interfaces the core consumes
// and the adapter that backs them with the Alpaca SDK. All normalization
// of SDK response shapes into model types happens here, at the boundary,
// so the rest of the code never probes vendor structs.
package broker

import "TradePilot/internal/model"

// Side of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// MarketDataSource fetches quotes and bar series. Implementations must
// tolerate partial symbol failures: symbols the venue cannot answer for
// are simply absent from the result map.
type MarketDataSource interface {
	// GetQuotes returns the latest quote snapshot per symbol.
	GetQuotes(symbols []string) (map[string]model.QuoteSnapshot, error)
	// GetBars returns up to limit ascending bars per symbol for the
	// given period (e.g. "5Min", "4Hour").
	GetBars(symbols []string, period string, limit int) (map[string][]model.Bar, error)
}

// AccountSource reads account state. Never cached: money decisions
// tolerate no staleness.
type AccountSource interface {
	GetAccount() (model.AccountSnapshot, error)
	GetPositions() ([]model.Position, error)
}

// OrderSink places orders. Failures surface as errors and are handled by
// the trader, never by callers further up.
type OrderSink interface {
	PlaceOrder(symbol string, side Side, qty int64) (orderID string, err error)
}

// NameResolver maps a symbol to a human-readable asset name.
type NameResolver interface {
	AssetName(symbol string) (string, error)
}

// Broker is the full brokerage surface used by the orchestrator.
type Broker interface {
	MarketDataSource
	AccountSource
	OrderSink
	NameResolver
}
