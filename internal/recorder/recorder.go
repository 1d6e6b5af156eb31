// Package recorder persists analysis verdicts and orders for later review.
package recorder

import "TradePilot/internal/model"

// AnalysisRecord is one symbol's verdict from one scan cycle.
type AnalysisRecord struct {
	Symbol     string
	Price      float64
	Action     model.Action
	Confidence float64
	Entry      float64
	StopLoss   float64
	TargetCash float64
	Reason     string
	RawSnippet string
}

// OrderRecord is one order submission, real or simulated.
type OrderRecord struct {
	Symbol    string
	Side      string
	Qty       int64
	Spend     float64
	OrderID   string
	Simulated bool
}

// Recorder persists records. Implementations must be safe for
// concurrent use.
type Recorder interface {
	RecordAnalysis(rec *AnalysisRecord) error
	RecordOrder(rec *OrderRecord) error
	Close() error
}
