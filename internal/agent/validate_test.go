package agent

import (
	"testing"

	"github.com/zentest-dev/zentest/internal/model"
)

func TestValidateActionsPassesKnownTypesThrough(t *testing.T) {
	in := []model.Action{
		{Type: model.ActionClick, X: 1, Y: 2},
		{Type: model.ActionDone, Success: true},
	}
	out := validateActions(in)
	if len(out) != 2 || out[0].Type != model.ActionClick || out[1].Type != model.ActionDone {
		t.Fatalf("expected actions unchanged, got %+v", out)
	}
}

func TestValidateActionsCoercesEmptyBatch(t *testing.T) {
	out := validateActions(nil)
	if len(out) != 1 || out[0].Type != model.ActionDone || out[0].Success {
		t.Fatalf("expected a single failing done, got %+v", out)
	}
	if out[0].Reason != "No actions returned" {
		t.Errorf("unexpected reason: %q", out[0].Reason)
	}
}

func TestValidateActionsCoercesUnknownType(t *testing.T) {
	out := validateActions([]model.Action{{Type: "fly"}})
	if len(out) != 1 || out[0].Type != model.ActionDone || out[0].Reason != "Unknown action: fly" {
		t.Fatalf("unexpected coercion result: %+v", out)
	}
}
