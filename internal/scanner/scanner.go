// Package scanner drives the analysis loop: refresh market data, run the
// indicator pipeline, ask the advisor, and hand verdicts to the trader.
package scanner

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"TradePilot/internal/advisor"
	"TradePilot/internal/broker"
	"TradePilot/internal/decision"
	"TradePilot/internal/indicator"
	"TradePilot/internal/marketdata"
	"TradePilot/internal/model"
	"TradePilot/internal/notifier"
	"TradePilot/internal/payload"
	"TradePilot/internal/recorder"
	"TradePilot/internal/trader"

	"github.com/robfig/cron/v3"
)

// Advisor is the completion surface the scanner consults.
type Advisor interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Scanner runs scheduled and on-demand scans over the watch list.
type Scanner struct {
	Cron      *cron.Cron
	Cache     *marketdata.Cache
	Advisor   Advisor
	Trader    *trader.Trader
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	WatchList *model.WatchList
	Account   broker.AccountSource
	Names     broker.NameResolver
	Builder   *payload.Builder

	ShortPeriod string
	LongPeriod  string
	Ctx         context.Context
}

// New creates a scanner over the given collaborators.
func New(ctx context.Context, cache *marketdata.Cache, adv Advisor, tr *trader.Trader,
	tn notifier.Notifier, rec recorder.Recorder, wl *model.WatchList,
	acct broker.AccountSource, names broker.NameResolver,
	shortPeriod, longPeriod string) *Scanner {
	return &Scanner{
		Cron:        cron.New(cron.WithSeconds()),
		Cache:       cache,
		Advisor:     adv,
		Trader:      tr,
		Notifier:    tn,
		Recorder:    rec,
		WatchList:   wl,
		Account:     acct,
		Names:       names,
		Builder:     payload.NewBuilder(),
		ShortPeriod: shortPeriod,
		LongPeriod:  longPeriod,
		Ctx:         ctx,
	}
}

// Register schedules the recurring scan.
func (s *Scanner) Register(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, func() { s.ScanAll(s.Ctx) }); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scanner) Start() {
	s.Cron.Start()
	log.Println("[INFO] scanner started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scanner) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scanner stopped")
}

// ScanAll refreshes the whole watch list in one batch, then analyzes
// each symbol in turn. One symbol's failure never blocks the rest.
func (s *Scanner) ScanAll(ctx context.Context) {
	symbols := s.WatchList.Symbols()
	if len(symbols) == 0 {
		log.Println("[INFO] scan skipped: watch list is empty")
		return
	}
	log.Printf("[INFO] scanning %d symbols: %s", len(symbols), strings.Join(symbols, " "))

	s.Cache.RefreshAll(symbols)

	for _, sym := range symbols {
		if ctx.Err() != nil {
			log.Println("[INFO] scan cancelled")
			return
		}
		if err := s.AnalyzeSymbol(ctx, sym); err != nil {
			log.Printf("[ERROR] analyze %s: %v", sym, err)
		}
	}
}

// AnalyzeSymbol runs the full cycle for one symbol: bars and quote from
// the cache, indicator series, advisor call, decision parsing, sizing
// and reporting.
func (s *Scanner) AnalyzeSymbol(ctx context.Context, symbol string) error {
	shortBars, ok := s.Cache.GetBars(symbol, s.ShortPeriod)
	if !ok {
		return fmt.Errorf("no %s bars for %s", s.ShortPeriod, symbol)
	}
	longBars, ok := s.Cache.GetBars(symbol, s.LongPeriod)
	if !ok {
		return fmt.Errorf("no %s bars for %s", s.LongPeriod, symbol)
	}

	var quote *model.QuoteSnapshot
	if q, ok := s.Cache.GetQuote(symbol); ok {
		quote = &q
	}

	short := indicator.Compute(shortBars, indicator.RoleShort)
	long := indicator.Compute(longBars, indicator.RoleLong)

	doc, err := s.Builder.Build(symbol, short, long, quote, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("build payload for %s: %w", symbol, err)
	}

	raw, err := s.Advisor.Complete(ctx, advisor.SystemPrompt, doc)
	if err != nil {
		return fmt.Errorf("advisor call for %s: %w", symbol, err)
	}

	d := decision.Parse(raw)
	price := s.referencePrice(quote, shortBars)

	if err := s.Recorder.RecordAnalysis(&recorder.AnalysisRecord{
		Symbol:     symbol,
		Price:      price,
		Action:     d.Action,
		Confidence: d.Confidence,
		Entry:      d.Entry,
		StopLoss:   d.StopLoss,
		TargetCash: d.TargetCash,
		Reason:     d.Reason,
		RawSnippet: d.RawSnippet,
	}); err != nil {
		log.Printf("[ERROR] record analysis %s: %v", symbol, err)
	}

	if d.Action == model.ActionError {
		log.Printf("[WARN] unparseable verdict for %s: %s", symbol, d.RawSnippet)
		s.trySend(ctx, notifier.FormatErrorAlert(symbol, d))
		return nil
	}

	res := s.execute(symbol, d, price)

	name := symbol
	if s.Names != nil {
		if n, err := s.Names.AssetName(symbol); err == nil && n != "" {
			name = n
		}
	}
	s.trySend(ctx, notifier.FormatAnalysisReport(symbol, name, price, d, res))
	return nil
}

// execute routes a decision through the trader. Account lookups can
// fail independently of market data; the sizer then sees a nil account
// and skips the trade rather than guessing.
func (s *Scanner) execute(symbol string, d model.Decision, price float64) *trader.Result {
	if s.Trader == nil {
		return nil
	}

	var account *model.AccountSnapshot
	if acct, err := s.Account.GetAccount(); err != nil {
		log.Printf("[WARN] account fetch failed: %v", err)
	} else {
		account = &acct
	}

	var heldQty float64
	heldSymbols := 0
	if positions, err := s.Account.GetPositions(); err != nil {
		log.Printf("[WARN] position fetch failed: %v", err)
	} else {
		heldSymbols = len(positions)
		for _, p := range positions {
			if p.Symbol == symbol {
				heldQty = p.Qty
			}
		}
	}

	res := s.Trader.Execute(symbol, d, account, price, heldQty, heldSymbols)
	if res.Plan.Skip {
		log.Printf("[INFO] no order for %s: %s", symbol, res.Plan.Reason)
	} else if err := s.Recorder.RecordOrder(&recorder.OrderRecord{
		Symbol:    res.Plan.Symbol,
		Side:      string(res.Plan.Side),
		Qty:       res.Plan.Qty,
		Spend:     res.Plan.Spend,
		OrderID:   res.OrderID,
		Simulated: res.Simulated,
	}); err != nil {
		log.Printf("[ERROR] record order %s: %v", symbol, err)
	}
	return &res
}

// referencePrice prefers the live quote mid and falls back to the last
// confirmed bar close.
func (s *Scanner) referencePrice(quote *model.QuoteSnapshot, shortBars []model.Bar) float64 {
	if quote != nil {
		if mid := quote.MidPrice(); mid > 0 {
			return mid
		}
	}
	if len(shortBars) >= 2 {
		return shortBars[len(shortBars)-2].Close
	}
	return 0
}

// HandleCommand processes a user command and returns a reply.
func (s *Scanner) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}

	switch fields[0] {
	case "/track":
		if len(fields) < 2 {
			return "Usage: /track SYMBOL [SYMBOL...]"
		}
		symbols := s.WatchList.Replace(fields[1:])
		go s.ScanAll(s.Ctx)
		return notifier.FormatWatchList(symbols) + "\nScanning now."
	case "/clear":
		s.WatchList.Clear()
		return "Watch list cleared."
	case "/scan":
		go s.ScanAll(s.Ctx)
		return "Scan started."
	case "/status":
		return notifier.FormatWatchList(s.WatchList.Symbols()) + "\nCache: " + s.Cache.Describe()
	default:
		return helpText
	}
}

const helpText = "Commands:\n" +
	"/track SYMBOL... : replace the watch list and scan\n" +
	"/scan : scan the watch list now\n" +
	"/status : show watch list and cache state\n" +
	"/clear : empty the watch list"

func (s *Scanner) trySend(ctx context.Context, text string) {
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
