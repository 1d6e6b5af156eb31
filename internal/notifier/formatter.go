package notifier

import (
	"fmt"
	"strings"
	"time"

	"TradePilot/internal/model"
	"TradePilot/internal/trader"
)

// FormatAnalysisReport formats one symbol's verdict into a Telegram
// message. exec is nil when no order was attempted.
func FormatAnalysisReport(symbol, assetName string, price float64, d model.Decision, exec *trader.Result) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s <b>%s</b> (%s) | %s\n\n", actionEmoji(d.Action), symbol, assetName, time.Now().Format("2006-01-02 15:04")))
	if price > 0 {
		b.WriteString(fmt.Sprintf("Price: %.2f\n", price))
	}
	b.WriteString(fmt.Sprintf("Verdict: <b>%s</b> (confidence %.0f%%)\n", d.Action, d.Confidence))
	if d.Entry > 0 {
		b.WriteString(fmt.Sprintf("Entry: %.2f\n", d.Entry))
	}
	if d.StopLoss > 0 {
		b.WriteString(fmt.Sprintf("Stop loss: %.2f\n", d.StopLoss))
	}
	if d.TargetCash > 0 {
		b.WriteString(fmt.Sprintf("Target amount: $%.0f\n", d.TargetCash))
	}
	if d.Reason != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", d.Reason))
	}

	if exec != nil {
		b.WriteString("\n")
		switch {
		case exec.Plan.Skip:
			b.WriteString(fmt.Sprintf("⏸ No order: %s\n", exec.Plan.Reason))
		case exec.Simulated:
			b.WriteString(fmt.Sprintf("🧪 Simulated: %s %d %s ($%.2f)\n", exec.Plan.Side, exec.Plan.Qty, exec.Plan.Symbol, exec.Plan.Spend))
		default:
			b.WriteString(fmt.Sprintf("✅ Order placed: %s %d %s ($%.2f, id %s)\n", exec.Plan.Side, exec.Plan.Qty, exec.Plan.Symbol, exec.Plan.Spend, exec.OrderID))
		}
	}

	return b.String()
}

// FormatErrorAlert formats an unparseable verdict as an operator alert.
// It is visually distinct from a normal report so that garbage model
// output never reads like a trading recommendation.
func FormatErrorAlert(symbol string, d model.Decision) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚨 <b>Analysis failed: %s</b>\n\n", symbol))
	b.WriteString("The model reply could not be parsed. No order was considered.\n")
	if d.RawSnippet != "" {
		b.WriteString(fmt.Sprintf("\nReply began with:\n<code>%s</code>\n", d.RawSnippet))
	}
	return b.String()
}

// FormatWatchList formats the tracked symbols for a status reply.
func FormatWatchList(symbols []string) string {
	if len(symbols) == 0 {
		return "👀 Watch list is empty. Use /track SYMBOL... to add symbols."
	}
	return fmt.Sprintf("👀 Watching %d: %s", len(symbols), strings.Join(symbols, " "))
}

func actionEmoji(a model.Action) string {
	switch a {
	case model.ActionBuy:
		return "🟢"
	case model.ActionSell:
		return "🔴"
	case model.ActionError:
		return "🚨"
	default:
		return "⚪"
	}
}
