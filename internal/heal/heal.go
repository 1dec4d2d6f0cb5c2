// Package heal implements the HealingOrchestrator: when a static replay of
// a suite's recorded steps breaks (the page changed under it), this is
// what tries to fix the test rather than just reporting red. It escalates
// through three tiers of increasing cost and increasing blast radius,
// stopping at the first one that produces a run verified to complete.
package heal

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/zentest-dev/zentest/internal/agent"
	"github.com/zentest-dev/zentest/internal/browser"
	"github.com/zentest-dev/zentest/internal/builder"
	"github.com/zentest-dev/zentest/internal/model"
	"github.com/zentest-dev/zentest/internal/provider"
	"github.com/zentest-dev/zentest/internal/replay"
)

func decodeB64(s string) []byte {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil
	}
	return data
}

// rewriteSystemPrompt asks the healer model for one corrected action for
// one failing step, not a whole new plan — tier 2 is meant to be a small,
// local fix.
const rewriteSystemPrompt = `A previously-recorded browser test step no longer works — the page it
was built against has changed. You are shown a screenshot of the current
page, the step's original intent, and the error it produced.

Reply with nothing but a JSON object of this shape:

{"reasoning": "short explanation", "actions": [ <one corrected action> ]}

Use the same action vocabulary as normal test steps (click, click_button,
click_text, select_input, type, key, scroll, assert_text, assert_visible,
etc). Produce exactly one action: the corrected version of the step that
failed.`

// Result describes which tier produced a working run and what changed.
type Result struct {
	Tier  int // 1, 2, or 3
	Steps []model.RecordedStep
	// Script is set only for a tier 2 fix: the regenerated script text
	// with just the affected test's block replaced.
	Script string
}

// Orchestrator holds everything Heal needs: the models for continuing a
// run agentically (tier 1 and 3) and for proposing a single-step rewrite
// (tier 2), and the live page both operate against.
type Orchestrator struct {
	AgenticClient provider.Client
	HealerClient  provider.Client
	Exec          *browser.Executor
	MaxSteps      int
	Viewport      agent.Viewport
}

// New returns an Orchestrator ready to heal suites on exec.
func New(agenticClient, healerClient provider.Client, exec *browser.Executor, maxSteps int, viewport agent.Viewport) *Orchestrator {
	return &Orchestrator{AgenticClient: agenticClient, HealerClient: healerClient, Exec: exec, MaxSteps: maxSteps, Viewport: viewport}
}

// Heal attempts to recover test after its recorded steps broke during a
// static replay. goodSteps is the full previously-recorded step list;
// failIndex is the index of the step that failed; tier 1 replays the steps
// before it onto the live page itself before continuing from there.
// script is the full generated script file the test's block should be
// spliced back into if tier 2 succeeds.
func (o *Orchestrator) Heal(ctx context.Context, test model.Test, script string, goodSteps []model.RecordedStep, failIndex int, failure error) (Result, error) {
	if failIndex < 0 || failIndex > len(goodSteps) {
		failIndex = len(goodSteps)
	}
	prefix := goodSteps[:failIndex]
	rest := goodSteps[failIndex:]

	if steps, err := o.tier1(ctx, test, prefix); err == nil {
		return Result{Tier: 1, Steps: steps}, nil
	}

	if newScript, steps, err := o.tier2(ctx, test, script, prefix, rest, failure); err == nil {
		return Result{Tier: 2, Steps: steps, Script: newScript}, nil
	}

	steps, err := o.tier3(ctx, test)
	if err != nil {
		return Result{}, fmt.Errorf("healing exhausted all tiers: %w", err)
	}
	return Result{Tier: 3, Steps: steps}, nil
}

// tier1 replays the known-good prefix (putting the live page back in the
// state the original recording reached) and hands control to the
// AgenticDriver to derive the rest from there — cheapest tier, since it
// reuses almost everything already recorded.
func (o *Orchestrator) tier1(ctx context.Context, test model.Test, prefix []model.RecordedStep) ([]model.RecordedStep, error) {
	if err := replay.Run(o.Exec, prefix); err != nil {
		return nil, fmt.Errorf("tier 1: replaying known-good prefix: %w", err)
	}

	d := agent.New(o.AgenticClient, o.Exec, o.MaxSteps, o.Viewport)
	steps, err := d.Continue(ctx, test, prefix)
	if err != nil {
		return nil, fmt.Errorf("tier 1: agentic continuation: %w", err)
	}
	return steps, nil
}

// tier2 asks the healer model for a single corrected replacement for the
// step that failed, verifies just that one action against the live page,
// then replays the remainder of the original recording to confirm the
// rest of the test still holds. It touches only one step and one test
// block in the generated script — the smallest possible fix.
func (o *Orchestrator) tier2(
	ctx context.Context, test model.Test, script string,
	prefix, rest []model.RecordedStep, failure error,
) (string, []model.RecordedStep, error) {
	if len(rest) == 0 {
		return "", nil, fmt.Errorf("tier 2: nothing to rewrite, prefix already covers the whole test")
	}
	failedStep := rest[0]

	shot, _ := o.Exec.Screenshot()
	userText := fmt.Sprintf(
		"Test: %s\n%s\n\nThe step intended: %s (reasoning: %q)\nIt failed with: %s\n\nA screenshot of the current page is attached. What single action should replace it?",
		test.Name, test.Description, failedStep.Action.Signature(), failedStep.Reasoning, failure,
	)
	var img []byte
	if shot != "" {
		img = decodeB64(shot)
	}

	resp, err := o.HealerClient.Next(ctx, provider.Request{
		SystemPrompt: rewriteSystemPrompt,
		UserText:     userText,
		ImagePNG:     img,
	})
	if err != nil {
		return "", nil, fmt.Errorf("tier 2: healer model call: %w", err)
	}
	if resp == nil {
		return "", nil, fmt.Errorf("tier 2: no response from healer model")
	}

	corrected, reasoning, err := agent.ParseSingleAction(resp.Text)
	if err != nil {
		return "", nil, fmt.Errorf("tier 2: parsing healer response: %w", err)
	}

	result, execErr := o.Exec.Execute(corrected)
	if execErr != nil {
		return "", nil, fmt.Errorf("tier 2: executing corrected step: %w", execErr)
	}
	if result.Err != nil {
		return "", nil, fmt.Errorf("tier 2: corrected step still fails: %w", result.Err)
	}

	fixedStep := model.RecordedStep{
		Action:      corrected,
		Reasoning:   reasoning,
		ElementInfo: result.ElementInfo,
		Screenshot:  result.ScreenshotB64,
		Timestamp:   result.Timestamp,
		Mode:        model.ModeReplay,
	}

	remainder := rest[1:]
	if err := replay.Run(o.Exec, remainder); err != nil {
		return "", nil, fmt.Errorf("tier 2: rest of the test no longer replays after the fix: %w", err)
	}

	newSteps := append(append(append([]model.RecordedStep{}, prefix...), fixedStep), remainder...)

	built := builder.Build(&model.TestSuite{Name: test.Name, Tests: []model.Test{test}},
		map[string][]model.RecordedStep{test.Name: newSteps})
	blockStart, blockEnd, found := FindTestBlock(built.Script, test.Name)
	if !found {
		return "", nil, fmt.Errorf("tier 2: could not locate the regenerated test's own block")
	}
	replacementBlock := built.Script[blockStart:blockEnd]

	newScript, ok := ReplaceTestBlock(script, test.Name, replacementBlock)
	if !ok {
		return "", nil, fmt.Errorf("tier 2: could not splice fix into the existing script (test block %q not found)", test.Name)
	}

	return newScript, newSteps, nil
}

// tier3 discards everything previously recorded for test and re-derives it
// from scratch, agentically — the most expensive tier, used only when a
// minimal fix (tier 1, tier 2) couldn't be verified.
func (o *Orchestrator) tier3(ctx context.Context, test model.Test) ([]model.RecordedStep, error) {
	d := agent.New(o.AgenticClient, o.Exec, o.MaxSteps, o.Viewport)
	steps, err := d.Run(ctx, test)
	if err != nil {
		return nil, fmt.Errorf("tier 3: full agentic re-derivation: %w", err)
	}
	return steps, nil
}
