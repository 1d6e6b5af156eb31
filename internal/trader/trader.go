package trader

import (
	"log"

	"TradePilot/internal/broker"
	"TradePilot/internal/model"
)

// Result reports what happened to one sized plan.
type Result struct {
	Plan    Plan
	OrderID string
	// Simulated is set when trading is disabled or the order was
	// rejected; the plan is then reported but no position changes.
	Simulated bool
	Err       error
}

// Trader sizes decisions and routes accepted plans to the order sink.
type Trader struct {
	sizer   *Sizer
	orders  broker.OrderSink
	enabled bool
}

// New builds a trader. When enabled is false every plan is simulated,
// which keeps the full pipeline observable without touching the account.
func New(sizer *Sizer, orders broker.OrderSink, enabled bool) *Trader {
	return &Trader{sizer: sizer, orders: orders, enabled: enabled}
}

// Execute sizes the decision and, when trading is enabled, places the
// order. An order rejection downgrades the result to simulated rather
// than failing the scan cycle.
func (t *Trader) Execute(symbol string, d model.Decision, account *model.AccountSnapshot, price, heldQty float64, heldSymbols int) Result {
	plan := t.sizer.Size(symbol, d, account, price, heldQty, heldSymbols)
	if plan.Skip {
		return Result{Plan: plan}
	}
	if !t.enabled {
		log.Printf("[INFO] trading disabled, simulating %s %d %s", plan.Side, plan.Qty, plan.Symbol)
		return Result{Plan: plan, Simulated: true}
	}

	id, err := t.orders.PlaceOrder(plan.Symbol, plan.Side, plan.Qty)
	if err != nil {
		log.Printf("[ERROR] order %s %d %s rejected: %v", plan.Side, plan.Qty, plan.Symbol, err)
		return Result{Plan: plan, Simulated: true, Err: err}
	}
	log.Printf("[INFO] order placed: %s %d %s (id=%s)", plan.Side, plan.Qty, plan.Symbol, id)
	return Result{Plan: plan, OrderID: id}
}
