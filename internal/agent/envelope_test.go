package agent

import "testing"

func TestParseEnvelopeBareJSON(t *testing.T) {
	raw := `{"reasoning":"clicking sign in","actions":[{"type":"click_button","name":"Sign In","exact":true}]}`
	env, err := parseEnvelope(raw)
	if err != nil {
		t.Fatalf("parseEnvelope: %v", err)
	}
	if env.Reasoning != "clicking sign in" {
		t.Errorf("Reasoning = %q", env.Reasoning)
	}
	if len(env.Actions) != 1 || env.Actions[0].Name != "Sign In" {
		t.Errorf("unexpected actions: %+v", env.Actions)
	}
}

func TestParseEnvelopeFencedCodeBlock(t *testing.T) {
	raw := "Here's what I'll do:\n```json\n{\"reasoning\":\"ok\",\"actions\":[{\"type\":\"wait\",\"ms\":500}]}\n```\nLet me know."
	env, err := parseEnvelope(raw)
	if err != nil {
		t.Fatalf("parseEnvelope: %v", err)
	}
	if len(env.Actions) != 1 || env.Actions[0].Ms != 500 {
		t.Errorf("unexpected actions: %+v", env.Actions)
	}
}

func TestParseEnvelopeEmbeddedInProse(t *testing.T) {
	raw := `I'll type the email now. {"reasoning":"fill email","actions":[{"type":"type","text":"a@b.com"}]} Let's see what happens.`
	env, err := parseEnvelope(raw)
	if err != nil {
		t.Fatalf("parseEnvelope: %v", err)
	}
	if len(env.Actions) != 1 || env.Actions[0].Text != "a@b.com" {
		t.Errorf("unexpected actions: %+v", env.Actions)
	}
}

func TestParseEnvelopeTruncatedRepair(t *testing.T) {
	raw := `{"reasoning":"clicking","actions":[{"type":"click_button","name":"Submit"`
	env, err := parseEnvelope(raw)
	if err != nil {
		t.Fatalf("parseEnvelope with repair: %v", err)
	}
	if len(env.Actions) != 1 || env.Actions[0].Name != "Submit" {
		t.Errorf("unexpected actions: %+v", env.Actions)
	}
}

func TestParseEnvelopeGarbageFails(t *testing.T) {
	if _, err := parseEnvelope("I am not sure what to do here."); err == nil {
		t.Error("expected an error for non-JSON response")
	}
}

func TestExtractBalancedPicksLongestActionsBlock(t *testing.T) {
	raw := `{"note":"ignore me"} and then {"reasoning":"r","actions":[{"type":"wait","ms":1}]}`
	got, ok := extractBalanced(raw)
	if !ok {
		t.Fatal("expected a balanced match")
	}
	if got != `{"reasoning":"r","actions":[{"type":"wait","ms":1}]}` {
		t.Errorf("extractBalanced = %q", got)
	}
}
