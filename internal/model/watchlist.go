package model

import (
	"sort"
	"strings"
	"sync"
)

// WatchList is the process-wide set of symbols under monitoring. It is
// written by command handling and read by the scan loop, which may run on
// different goroutines, so all access goes through the mutex.
type WatchList struct {
	mu      sync.Mutex
	symbols map[string]struct{}
}

// NewWatchList creates an empty watch list.
func NewWatchList() *WatchList {
	return &WatchList{symbols: make(map[string]struct{})}
}

// Replace swaps the entire list for the given symbols, deduplicating and
// normalizing to upper case. Returns the resulting list.
func (w *WatchList) Replace(symbols []string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.symbols = make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			w.symbols[s] = struct{}{}
		}
	}
	return w.snapshot()
}

// Clear empties the list.
func (w *WatchList) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.symbols = make(map[string]struct{})
}

// Symbols returns a sorted copy of the current list.
func (w *WatchList) Symbols() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

// Len returns the number of tracked symbols.
func (w *WatchList) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.symbols)
}

func (w *WatchList) snapshot() []string {
	out := make([]string, 0, len(w.symbols))
	for s := range w.symbols {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
