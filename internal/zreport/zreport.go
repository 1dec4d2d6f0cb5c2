// Package zreport renders the end-of-run summary: one line per test plus
// an aggregate line, printed the way cmd/test.go narrates progress —
// emoji-prefixed plain stdout lines, no structured logging library, since
// this output is for a human watching a terminal.
package zreport

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zentest-dev/zentest/internal/model"
	"github.com/zentest-dev/zentest/internal/provider"
	"github.com/zentest-dev/zentest/internal/runrecord"
	"github.com/zentest-dev/zentest/internal/util"
)

// pricePerM are rough per-million-token USD prices used only for the
// estimate in the summary footer; none of the driver's behavior depends
// on them.
var pricePerM = map[string][2]float64{
	"claude-sonnet-4-5": {3.00, 15.00},
	"claude-opus-4-5":   {15.00, 75.00},
	"gpt-4o":            {2.50, 10.00},
	"gpt-4o-mini":       {0.15, 0.60},
}

// Summary aggregates a suite run's results for the stdout narration.
type Summary struct {
	SuiteName string
	Results   []runrecord.TestResult
	StartedAt time.Time
	Model     string
}

// Passed reports whether every test in the summary passed.
func (s Summary) Passed() bool {
	for _, r := range s.Results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// TotalDuration sums each test's recorded duration.
func (s Summary) TotalDuration() time.Duration {
	var total time.Duration
	for _, r := range s.Results {
		total += r.Duration
	}
	return total
}

// TotalTokens sums input/output tokens across every test in the summary.
func (s Summary) TotalTokens() (input, output int) {
	for _, r := range s.Results {
		input += r.InputTokens
		output += r.OutputTokens
	}
	return input, output
}

// EstimatedCost returns a rough USD estimate for the summary's token
// totals, using Model's known per-million-token price if recognized, or 0
// if not.
func (s Summary) EstimatedCost() float64 {
	prices, ok := pricePerM[s.Model]
	if !ok {
		return 0
	}
	input, output := s.TotalTokens()
	usage := provider.TokenUsage{InputTokens: input, OutputTokens: output}
	return usage.EstimatedCost(prices[0], prices[1])
}

// Write renders s to w: a line per test, then an aggregate footer.
func Write(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\n%s %s\n", util.EmojiClip, s.SuiteName)
	for _, r := range s.Results {
		icon := util.EmojiPassed
		if !r.Passed {
			icon = util.EmojiFailed
		}
		line := fmt.Sprintf("  %s %s  (%d actions, %s)", icon, r.Name, r.ActionCount, r.Duration.Round(time.Millisecond))
		if r.HealTier > 0 {
			line += fmt.Sprintf("  [healed: tier %d]", r.HealTier)
		}
		if !r.Passed && r.Reason != "" {
			line += "\n     " + r.Reason
		}
		fmt.Fprintln(w, line)
	}

	passed := 0
	for _, r := range s.Results {
		if r.Passed {
			passed++
		}
	}
	input, output := s.TotalTokens()
	icon := util.EmojiPassed
	if !s.Passed() {
		icon = util.EmojiFailed
	}
	fmt.Fprintf(w, "\n%s %d/%d passed in %s", icon, passed, len(s.Results), s.TotalDuration().Round(time.Millisecond))
	if cost := s.EstimatedCost(); cost > 0 {
		fmt.Fprintf(w, " · ~$%.4f (%d in / %d out tokens)", cost, input, output)
	}
	fmt.Fprintln(w)
}

// WriteStep prints a single narration line for one executed step, matching
// an "emoji + short phrase" per-action progress idiom.
func WriteStep(w io.Writer, testName string, stepNum int, description string, ok bool) {
	icon := util.EmojiMouse
	if !ok {
		icon = util.EmojiWarning
	}
	fmt.Fprintf(w, "  %s [%s] step %d: %s\n", icon, testName, stepNum, strings.TrimSpace(description))
}

// StepEvent is one line of the `--verbose` machine-readable step trace: one
// JSON object per executed step, so CI log scrapers can follow a run
// without parsing the human-facing emoji narration.
type StepEvent struct {
	Test      string    `json:"test"`
	Index     int       `json:"index"`
	Action    string    `json:"action"`
	Reasoning string    `json:"reasoning,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// WriteStepEvents marshals one StepEvent per step in steps to w, in order.
func WriteStepEvents(w io.Writer, testName string, steps []model.RecordedStep) {
	enc := json.NewEncoder(w)
	for i, s := range steps {
		ev := StepEvent{
			Test:      testName,
			Index:     i,
			Action:    string(s.Action.Type),
			Reasoning: s.Reasoning,
			Success:   s.Error == "",
			Error:     s.Error,
			Timestamp: s.Timestamp,
		}
		_ = enc.Encode(ev)
	}
}
