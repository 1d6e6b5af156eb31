package broker

import (
	"fmt"
	"sync"

	"TradePilot/internal/model"
)

// PlacedOrder records one order submitted to the MockBroker.
type PlacedOrder struct {
	Symbol string
	Side   Side
	Qty    int64
}

// MockBroker returns controllable fixed data for development and testing.
type MockBroker struct {
	mu sync.Mutex

	Quotes    map[string]model.QuoteSnapshot
	Bars      map[string]map[string][]model.Bar // period -> symbol -> bars
	Account   model.AccountSnapshot
	Positions []model.Position
	Names     map[string]string

	QuoteErr   error
	BarsErr    error
	AccountErr error
	OrderErr   error

	QuoteCalls int
	BarCalls   int
	Orders     []PlacedOrder

	nextOrderID int
}

// NewMockBroker creates an empty mock.
func NewMockBroker() *MockBroker {
	return &MockBroker{
		Quotes: make(map[string]model.QuoteSnapshot),
		Bars:   make(map[string]map[string][]model.Bar),
		Names:  make(map[string]string),
	}
}

// SetBars installs a bar series for one symbol and period.
func (m *MockBroker) SetBars(symbol, period string, bars []model.Bar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Bars[period] == nil {
		m.Bars[period] = make(map[string][]model.Bar)
	}
	m.Bars[period][symbol] = bars
}

func (m *MockBroker) GetQuotes(symbols []string) (map[string]model.QuoteSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuoteCalls++
	if m.QuoteErr != nil {
		return nil, m.QuoteErr
	}
	out := make(map[string]model.QuoteSnapshot)
	for _, s := range symbols {
		if q, ok := m.Quotes[s]; ok {
			out[s] = q
		}
	}
	return out, nil
}

func (m *MockBroker) GetBars(symbols []string, period string, limit int) (map[string][]model.Bar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BarCalls++
	if m.BarsErr != nil {
		return nil, m.BarsErr
	}
	out := make(map[string][]model.Bar)
	for _, s := range symbols {
		if bars, ok := m.Bars[period][s]; ok {
			if len(bars) > limit {
				bars = bars[len(bars)-limit:]
			}
			out[s] = bars
		}
	}
	return out, nil
}

func (m *MockBroker) GetAccount() (model.AccountSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AccountErr != nil {
		return model.AccountSnapshot{}, m.AccountErr
	}
	return m.Account, nil
}

func (m *MockBroker) GetPositions() ([]model.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AccountErr != nil {
		return nil, m.AccountErr
	}
	return append([]model.Position(nil), m.Positions...), nil
}

func (m *MockBroker) PlaceOrder(symbol string, side Side, qty int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OrderErr != nil {
		return "", m.OrderErr
	}
	m.Orders = append(m.Orders, PlacedOrder{Symbol: symbol, Side: side, Qty: qty})
	m.nextOrderID++
	return fmt.Sprintf("mock-%d", m.nextOrderID), nil
}

func (m *MockBroker) AssetName(symbol string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name, ok := m.Names[symbol]; ok {
		return name, nil
	}
	return symbol, nil
}
