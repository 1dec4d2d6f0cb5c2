// Package replay implements the ScriptReplayer: deterministically
// fast-forwarding a live page through a suite's already-recorded steps, so
// the AgenticDriver can resume from wherever a partial run left off instead
// of restarting a test from its first action. Grounded on
// internal/browser's Executor primitives (Perform), reused here instead of
// duplicated, with the timing policy replaced: Execute's 300-1000ms jitter
// is tuned for an agent watching screenshots between actions; replay has no
// observer between steps and uses a fixed, shorter settle instead.
package replay

import (
	"fmt"
	"regexp"
	"time"

	"github.com/zentest-dev/zentest/internal/browser"
	"github.com/zentest-dev/zentest/internal/model"
)

// submitLike matches button/action names that plausibly trigger a
// navigation or async submit, warranting a network-idle wait on top of the
// fixed settle rather than just the fixed settle alone.
var submitLike = regexp.MustCompile(`(?i)sign.?in|log.?in|submit|save|confirm|continue|next`)

const (
	settleAfterStep   = 250 * time.Millisecond
	settleAfterSubmit = 1 * time.Second
)

// FailedStepError identifies which step a replay could not re-execute, so
// a caller (internal/heal) can replay the known-good prefix before it and
// hand off from there instead of discarding the whole recording.
type FailedStepError struct {
	Index int
	Err   error
}

func (e *FailedStepError) Error() string {
	return fmt.Sprintf("replay step %d: %v", e.Index, e.Err)
}

func (e *FailedStepError) Unwrap() error { return e.Err }

// Run replays steps in order against exec's page, skipping any step whose
// original recording failed (Error != "") and skipping assertions
// entirely — replay's job is to fast-forward state, not to re-verify past
// outcomes. It stops and returns a *FailedStepError at the first step it
// cannot re-execute.
func Run(exec *browser.Executor, steps []model.RecordedStep) error {
	for i, step := range steps {
		if !replayable(step) {
			continue
		}

		_, actErr, unreachable := performStep(exec, step)
		if unreachable != nil {
			return &FailedStepError{Index: i, Err: fmt.Errorf("%s: %w", step.Reasoning, unreachable)}
		}
		if actErr != nil {
			return &FailedStepError{Index: i, Err: fmt.Errorf("%s: %w", step.Reasoning, actErr)}
		}

		settle(exec, step.Action)
	}
	return nil
}

// performStep locates the element the same way the Builder would for this
// step's recorded ElementInfo — its durable selector — rather than
// re-deriving it from scratch via coordinate + magnet-snap. This is what
// makes replay deterministic: the element a recording clicked is found
// again by what it was, not by what now happens to sit at its old pixel
// position. Action variants that never carry a coordinate-derived
// ElementInfo (click_button, click_text, select_input locate by role/text/
// label already) or whose ElementInfo has no selector fall back to
// Executor.Perform's ordinary coordinate handling.
func performStep(exec *browser.Executor, step model.RecordedStep) (info *model.ElementInfo, actErr, unreachable error) {
	switch step.Action.Type {
	case model.ActionClick, model.ActionDoubleClick, model.ActionAssertVisible:
		if step.ElementInfo != nil && step.ElementInfo.Selector != "" {
			return exec.PerformAtSelector(step.Action, step.ElementInfo.Selector)
		}
	}
	return exec.Perform(step.Action)
}

func settle(exec *browser.Executor, a model.Action) {
	time.Sleep(settleAfterStep)

	if a.Type != model.ActionClickButton && a.Type != model.ActionClickText && a.Type != model.ActionClick {
		return
	}
	if !submitLike.MatchString(a.Name) && !submitLike.MatchString(a.Text) {
		return
	}

	exec.Page.Timeout(5 * time.Second).WaitIdle(time.Second)
	time.Sleep(settleAfterSubmit)
}

// replayable reports whether step should be re-executed: its original
// recording must not have errored, and it must not be an assertion.
func replayable(step model.RecordedStep) bool {
	if step.Error != "" {
		return false
	}
	return !isAssertion(step.Action)
}

func isAssertion(a model.Action) bool {
	switch a.Type {
	case model.ActionAssertText, model.ActionAssertNotText, model.ActionAssertVisible:
		return true
	default:
		return false
	}
}
