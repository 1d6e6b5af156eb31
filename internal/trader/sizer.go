// Package trader turns model decisions into bounded brokerage orders.
// Sizing is deliberately conservative: every buy is clamped by available
// cash and by a per-symbol equity fraction, and a sell can never exceed
// the held quantity.
package trader

import (
	"fmt"
	"math"

	"TradePilot/internal/broker"
	"TradePilot/internal/model"
)

// Plan is the sized outcome of one decision. Qty is zero when the
// decision is skipped; Reason then explains why.
type Plan struct {
	Symbol string
	Side   broker.Side
	Qty    int64
	Spend  float64
	Skip   bool
	Reason string
}

// Sizer converts decisions into order plans under fixed risk caps.
type Sizer struct {
	// MinConfidence is the lowest confidence that may trade.
	MinConfidence float64
	// MaxSymbolFraction caps a single symbol's buy spend as a fraction
	// of account equity.
	MaxSymbolFraction float64
	// MaxSymbols caps the number of simultaneously held symbols.
	MaxSymbols int
}

// NewSizer returns a sizer with the default risk caps.
func NewSizer() *Sizer {
	return &Sizer{
		MinConfidence:     70,
		MaxSymbolFraction: 0.5,
		MaxSymbols:        10,
	}
}

func skip(symbol, reason string) Plan {
	return Plan{Symbol: symbol, Skip: true, Reason: reason}
}

// Size maps a decision to a plan. price is the execution reference price,
// heldQty the current position in shares (0 when flat), heldSymbols the
// number of distinct symbols currently held.
func (s *Sizer) Size(symbol string, d model.Decision, account *model.AccountSnapshot, price, heldQty float64, heldSymbols int) Plan {
	if !d.Tradeable() {
		return skip(symbol, fmt.Sprintf("action %s is not tradeable", d.Action))
	}
	if d.Confidence < s.MinConfidence {
		return skip(symbol, fmt.Sprintf("confidence %.0f below threshold %.0f", d.Confidence, s.MinConfidence))
	}
	if price <= 0 {
		return skip(symbol, "no usable price")
	}
	if account == nil {
		return skip(symbol, "cash unavailable")
	}

	switch d.Action {
	case model.ActionBuy:
		return s.sizeBuy(symbol, d, account, price, heldQty, heldSymbols)
	case model.ActionSell:
		return s.sizeSell(symbol, d, price, heldQty)
	}
	return skip(symbol, fmt.Sprintf("unhandled action %s", d.Action))
}

func (s *Sizer) sizeBuy(symbol string, d model.Decision, account *model.AccountSnapshot, price, heldQty float64, heldSymbols int) Plan {
	if heldQty <= 0 && s.MaxSymbols > 0 && heldSymbols >= s.MaxSymbols {
		return skip(symbol, fmt.Sprintf("already holding %d symbols (cap %d)", heldSymbols, s.MaxSymbols))
	}

	spend := d.TargetCash
	if spend <= 0 {
		return skip(symbol, "buy with no target amount")
	}
	if spend > account.Cash {
		spend = account.Cash
	}
	if s.MaxSymbolFraction > 0 && account.Equity > 0 {
		cap := s.MaxSymbolFraction*account.Equity - heldQty*price
		if cap <= 0 {
			return skip(symbol, "symbol exposure cap reached")
		}
		if spend > cap {
			spend = cap
		}
	}

	qty := int64(math.Floor(spend / price))
	if qty <= 0 {
		return skip(symbol, "amount too small for one share")
	}
	return Plan{Symbol: symbol, Side: broker.SideBuy, Qty: qty, Spend: float64(qty) * price}
}

func (s *Sizer) sizeSell(symbol string, d model.Decision, price, heldQty float64) Plan {
	held := int64(math.Floor(heldQty))
	if held <= 0 {
		return skip(symbol, "no position to sell")
	}

	// target_cash is the cash to raise. Zero or a target at or above
	// the position's current value both mean a full liquidation.
	if d.TargetCash <= 0 || d.TargetCash >= heldQty*price {
		return Plan{Symbol: symbol, Side: broker.SideSell, Qty: held, Spend: heldQty * price}
	}

	qty := int64(math.Floor(d.TargetCash / price))
	if qty <= 0 {
		return skip(symbol, "amount too small for one share")
	}
	if qty > held {
		qty = held
	}
	return Plan{Symbol: symbol, Side: broker.SideSell, Qty: qty, Spend: float64(qty) * price}
}
