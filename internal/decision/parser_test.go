package decision

import (
	"encoding/json"
	"strings"
	"testing"

	"TradePilot/internal/model"
)

func TestParse_PlainJSON(t *testing.T) {
	d := Parse(`{"action":"BUY","confidence":85,"entry":123.45,"stop_loss":120.0,"target_cash":2000,"reason":"breakout"}`)
	if d.Action != model.ActionBuy {
		t.Errorf("expected BUY, got %s", d.Action)
	}
	if d.Confidence != 85 {
		t.Errorf("expected confidence 85, got %v", d.Confidence)
	}
	if d.TargetCash != 2000 {
		t.Errorf("expected target_cash 2000, got %v", d.TargetCash)
	}
	if d.StopLoss != 120.0 {
		t.Errorf("expected stop_loss 120, got %v", d.StopLoss)
	}
}

func TestParse_FencedInsideProse(t *testing.T) {
	raw := "blah blah ```json\n{\"action\":\"BUY\",\"confidence\":80}\n```"
	d := Parse(raw)
	if d.Action != model.ActionBuy {
		t.Errorf("expected BUY, got %s", d.Action)
	}
	if d.Confidence != 80 {
		t.Errorf("expected confidence 80, got %v", d.Confidence)
	}
}

func TestParse_FullyFencedResponse(t *testing.T) {
	raw := "```json\n{\"action\":\"SELL\",\"confidence\":90,\"reason\":\"distribution\"}\n```"
	d := Parse(raw)
	if d.Action != model.ActionSell || d.Confidence != 90 {
		t.Errorf("unexpected decision: %+v", d)
	}
}

func TestParse_LabelledSummary(t *testing.T) {
	raw := "### Report\nLong prose here.\n\nJSON_SUMMARY:\n{\"action\":\"WAIT\",\"confidence\":40,\"reason\":\"choppy\"}\nfooter"
	d := Parse(raw)
	if d.Action != model.ActionWait || d.Confidence != 40 {
		t.Errorf("unexpected decision: %+v", d)
	}
}

func TestParse_MarkdownReportWithTrailingObject(t *testing.T) {
	raw := "#### Trade Plan\n* **Action**: BUY\n\n---\n{\n  \"action\": \"BUY\",\n  \"confidence\": 72,\n  \"target_cash\": 1500\n}"
	d := Parse(raw)
	if d.Action != model.ActionBuy || d.TargetCash != 1500 {
		t.Errorf("unexpected decision: %+v", d)
	}
}

func TestParse_NoBraces(t *testing.T) {
	raw := "The market looks mixed today.\nI would not commit either way.\n" + strings.Repeat("waffle ", 40)
	d := Parse(raw)
	if d.Action != model.ActionError {
		t.Fatalf("expected ERROR, got %s", d.Action)
	}
	if d.Confidence != 0 {
		t.Errorf("expected confidence 0, got %v", d.Confidence)
	}
	if d.RawSnippet == "" {
		t.Error("expected non-empty raw snippet")
	}
	if len([]rune(d.RawSnippet)) > 100 {
		t.Errorf("snippet too long: %d", len(d.RawSnippet))
	}
	if strings.ContainsAny(d.RawSnippet, "\n\r") {
		t.Error("snippet should have newlines collapsed")
	}
}

func TestParse_EmptyInput(t *testing.T) {
	d := Parse("")
	if d.Action != model.ActionError {
		t.Errorf("expected ERROR for empty input, got %s", d.Action)
	}
}

func TestParse_MissingFieldsDefault(t *testing.T) {
	d := Parse(`{"reason":"nothing actionable"}`)
	if d.Action != model.ActionWait {
		t.Errorf("missing action should default to WAIT, got %s", d.Action)
	}
	if d.Confidence != 0 || d.TargetCash != 0 {
		t.Errorf("missing numerics should default to zero: %+v", d)
	}
	if d.Reason != "nothing actionable" {
		t.Errorf("unexpected reason: %q", d.Reason)
	}
}

func TestParse_UnknownActionBecomesWait(t *testing.T) {
	d := Parse(`{"action":"HODL","confidence":99}`)
	if d.Action != model.ActionWait {
		t.Errorf("expected WAIT for unknown action, got %s", d.Action)
	}
}

func TestParse_ConfidenceClamped(t *testing.T) {
	if d := Parse(`{"action":"BUY","confidence":250}`); d.Confidence != 100 {
		t.Errorf("expected clamp to 100, got %v", d.Confidence)
	}
	if d := Parse(`{"action":"BUY","confidence":-5}`); d.Confidence != 0 {
		t.Errorf("expected clamp to 0, got %v", d.Confidence)
	}
}

func TestParse_Idempotent(t *testing.T) {
	original := Parse(`{"action":"SELL","confidence":75,"entry":50.5,"stop_loss":52.0,"target_cash":900,"reason":"weak bounce"}`)
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	reparsed := Parse(string(data))
	if reparsed != original {
		t.Errorf("reparse mismatch:\n  original: %+v\n  reparsed: %+v", original, reparsed)
	}
}

func TestParse_IdempotentForErrorDecision(t *testing.T) {
	original := Parse("nothing machine-readable in here at all")
	if original.Action != model.ActionError {
		t.Fatalf("expected ERROR, got %s", original.Action)
	}
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	reparsed := Parse(string(data))
	if reparsed != original {
		t.Errorf("reparse mismatch:\n  original: %+v\n  reparsed: %+v", original, reparsed)
	}
}
