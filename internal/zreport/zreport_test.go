package zreport

import (
	"strings"
	"testing"
	"time"

	"github.com/zentest-dev/zentest/internal/model"
	"github.com/zentest-dev/zentest/internal/runrecord"
)

func TestSummaryPassedAllGreen(t *testing.T) {
	s := Summary{Results: []runrecord.TestResult{{Passed: true}, {Passed: true}}}
	if !s.Passed() {
		t.Error("expected Passed() true when every test passed")
	}
}

func TestSummaryPassedOneRed(t *testing.T) {
	s := Summary{Results: []runrecord.TestResult{{Passed: true}, {Passed: false}}}
	if s.Passed() {
		t.Error("expected Passed() false when any test failed")
	}
}

func TestTotalDuration(t *testing.T) {
	s := Summary{Results: []runrecord.TestResult{
		{Duration: 2 * time.Second}, {Duration: 3 * time.Second},
	}}
	if got := s.TotalDuration(); got != 5*time.Second {
		t.Errorf("TotalDuration = %v, want 5s", got)
	}
}

func TestTotalTokensAndCost(t *testing.T) {
	s := Summary{
		Model: "claude-sonnet-4-5",
		Results: []runrecord.TestResult{
			{InputTokens: 1000, OutputTokens: 500},
			{InputTokens: 2000, OutputTokens: 1000},
		},
	}
	in, out := s.TotalTokens()
	if in != 3000 || out != 1500 {
		t.Errorf("TotalTokens = (%d, %d)", in, out)
	}
	if cost := s.EstimatedCost(); cost <= 0 {
		t.Errorf("EstimatedCost = %f, want > 0 for a known model", cost)
	}
}

func TestEstimatedCostUnknownModel(t *testing.T) {
	s := Summary{Model: "some-unreleased-model", Results: []runrecord.TestResult{{InputTokens: 100, OutputTokens: 50}}}
	if cost := s.EstimatedCost(); cost != 0 {
		t.Errorf("EstimatedCost = %f, want 0 for an unrecognized model", cost)
	}
}

func TestWriteIncludesTestNamesReasonAndAggregate(t *testing.T) {
	var b strings.Builder
	s := Summary{
		SuiteName: "auth",
		Results: []runrecord.TestResult{
			{Name: "login", Passed: true, ActionCount: 4, Duration: time.Second},
			{Name: "logout", Passed: false, Reason: "button not found", Duration: 500 * time.Millisecond},
		},
	}
	Write(&b, s)
	out := b.String()
	if !strings.Contains(out, "login") || !strings.Contains(out, "logout") {
		t.Errorf("output missing test names: %s", out)
	}
	if !strings.Contains(out, "button not found") {
		t.Errorf("output missing failure reason: %s", out)
	}
	if !strings.Contains(out, "1/2 passed") {
		t.Errorf("output missing aggregate line: %s", out)
	}
}

func TestWriteStepEventsEmitsOneLinePerStep(t *testing.T) {
	var b strings.Builder
	steps := []model.RecordedStep{
		{Action: model.Action{Type: model.ActionClickButton, Name: "Sign In"}, Reasoning: "open the form"},
		{Action: model.Action{Type: model.ActionTyping}, Error: "field not found"},
	}
	WriteStepEvents(&b, "login", steps)

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSON lines, got %d: %q", len(lines), b.String())
	}
	if !strings.Contains(lines[0], `"test":"login"`) || !strings.Contains(lines[0], `"action":"click_button"`) {
		t.Errorf("first line missing expected fields: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"success":false`) || !strings.Contains(lines[1], `"error":"field not found"`) {
		t.Errorf("second line missing expected failure fields: %s", lines[1])
	}
}
