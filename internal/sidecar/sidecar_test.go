package sidecar

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/zentest-dev/zentest/internal/model"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir, "auth")

	sc := &model.SuiteSidecar{
		Tests: []model.SidecarTest{
			{
				Name: "login",
				Steps: []model.RecordedStep{
					{
						Action:      model.Action{Type: model.ActionClickButton, Name: "Sign In", Exact: true},
						Reasoning:   "clicking sign in",
						ElementInfo: &model.ElementInfo{Tag: "button", Selector: `button:has-text("Sign In")`},
						Screenshot:  "should-not-round-trip",
						Timestamp:   time.Unix(1700000000, 0).UTC(),
						Mode:        model.ModeAgentic,
					},
				},
			},
		},
	}

	if err := Save(path, sc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil {
		t.Fatal("Load returned nil sidecar")
	}
	if len(got.Tests) != 1 || got.Tests[0].Name != "login" {
		t.Fatalf("unexpected tests: %+v", got.Tests)
	}
	step := got.Tests[0].Steps[0]
	if step.Screenshot != "" {
		t.Errorf("Screenshot should not round-trip, got %q", step.Screenshot)
	}
	if step.Action.Name != "Sign In" {
		t.Errorf("Action.Name = %q, want Sign In", step.Action.Name)
	}
	if step.ElementInfo == nil || step.ElementInfo.Selector != `button:has-text("Sign In")` {
		t.Errorf("ElementInfo not round-tripped: %+v", step.ElementInfo)
	}
}

func TestLoadMissingFileIsNotError(t *testing.T) {
	dir := t.TempDir()
	sc, err := Load(filepath.Join(dir, "nope.steps.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc != nil {
		t.Errorf("expected nil sidecar for missing file, got %+v", sc)
	}
}
