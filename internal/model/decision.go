package model

// Action is the model-recommended trading action.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionWait Action = "WAIT"
	// ActionError marks output the parser could not understand. It is
	// deliberately distinct from WAIT: ERROR raises an operator alert,
	// WAIT is a legitimate no-trade verdict.
	ActionError Action = "ERROR"
)

// Decision is the typed result of parsing the model's free-form verdict.
// It is created once per analysis cycle and never mutated afterwards.
type Decision struct {
	Action     Action  `json:"action"`
	Confidence float64 `json:"confidence"`
	Entry      float64 `json:"entry,omitempty"`
	StopLoss   float64 `json:"stop_loss,omitempty"`
	TargetCash float64 `json:"target_cash,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	RawSnippet string  `json:"raw_snippet,omitempty"` // set only on ERROR
}

// Tradeable reports whether the decision proposes an order at all.
func (d *Decision) Tradeable() bool {
	return d.Action == ActionBuy || d.Action == ActionSell
}
