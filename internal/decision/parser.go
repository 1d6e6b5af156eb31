// Package decision extracts a typed trading decision from the model's
// free-form output. The input is unreliable text: the parser is maximally
// tolerant, and when every strategy fails it still returns a valid
// Decision carrying an ERROR action instead of raising. ERROR is kept
// distinct from WAIT so that operator alerting can tell a broken response
// apart from a deliberate no-trade.
package decision

import (
	"encoding/json"
	"regexp"
	"strings"

	"TradePilot/internal/model"
)

const snippetLimit = 100

// strategy attempts to locate a JSON object inside raw text. It returns
// the candidate substring, or "" when the strategy does not apply.
type strategy struct {
	name    string
	extract func(string) string
}

var (
	reSummary = regexp.MustCompile(`(?s)JSON_SUMMARY\s*[:：]\s*(\{.*?\})`)
	reFenced  = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	reBraces  = regexp.MustCompile(`(?s)\{.*\}`)
	reFlat    = regexp.MustCompile(`\{[^{}]*"action"[^{}]*\}`)
)

// strategies are tried in order; the first one whose candidate parses
// wins. New response formats get a new entry, not new control flow.
var strategies = []strategy{
	{"whole", func(raw string) string {
		return stripFences(raw)
	}},
	{"labelled", func(raw string) string {
		if m := reSummary.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
		return ""
	}},
	{"fenced", func(raw string) string {
		if m := reFenced.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
		return ""
	}},
	{"braces", func(raw string) string {
		return reBraces.FindString(raw)
	}},
	// Last resort for responses holding several objects: the greedy
	// match above spans them all and fails, but a flat object naming
	// "action" is still recoverable.
	{"flat", func(raw string) string {
		return reFlat.FindString(raw)
	}},
}

// wireDecision mirrors the JSON contract announced in the system prompt,
// plus the raw_snippet field so that a previously serialized ERROR
// decision survives a round trip through Parse.
type wireDecision struct {
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	Entry      float64 `json:"entry"`
	StopLoss   float64 `json:"stop_loss"`
	TargetCash float64 `json:"target_cash"`
	Reason     string  `json:"reason"`
	RawSnippet string  `json:"raw_snippet"`
}

// Parse converts raw model output into a Decision. It never fails: if no
// strategy yields a parseable JSON object, the result is an ERROR
// decision carrying a snippet of the offending text.
func Parse(raw string) model.Decision {
	for _, s := range strategies {
		candidate := s.extract(raw)
		if candidate == "" {
			continue
		}
		var wire wireDecision
		if err := json.Unmarshal([]byte(candidate), &wire); err != nil {
			continue
		}
		return fromWire(wire)
	}

	return model.Decision{
		Action:     model.ActionError,
		Confidence: 0,
		Reason:     "no parseable JSON object in model response",
		RawSnippet: snippet(raw),
	}
}

func fromWire(w wireDecision) model.Decision {
	action := model.Action(strings.ToUpper(strings.TrimSpace(w.Action)))
	switch action {
	case model.ActionBuy, model.ActionSell, model.ActionWait, model.ActionError:
	default:
		// Absent or unrecognized action defaults to a no-trade verdict.
		action = model.ActionWait
	}

	confidence := w.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	d := model.Decision{
		Action:     action,
		Confidence: confidence,
		Entry:      w.Entry,
		StopLoss:   w.StopLoss,
		TargetCash: w.TargetCash,
		Reason:     w.Reason,
	}
	if action == model.ActionError {
		d.RawSnippet = w.RawSnippet
	}
	return d
}

// stripFences removes a single leading/trailing code-fence marker so that
// a fully fenced response can be parsed as one JSON object.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// snippet returns the first 100 characters of the text with newlines
// collapsed, for operator-facing error reports.
func snippet(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	runes := []rune(s)
	if len(runes) > snippetLimit {
		return string(runes[:snippetLimit])
	}
	return s
}
