// Package agent implements the AgenticDriver: a step loop that shows a
// vision model the current page, asks it for a batch of actions, runs them
// through a browser.Executor, and feeds the outcome back until the model
// reports the test done, the run stalls, or it exhausts its step budget.
package agent

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/zentest-dev/zentest/internal/model"
	"github.com/zentest-dev/zentest/internal/provider"
)

// pageExecutor is the subset of browser.Executor the driver needs,
// declared locally so tests can supply a fake without a live page.
type pageExecutor interface {
	Execute(model.Action) (model.ActionResult, error)
	Screenshot() (string, error)
}

// prematureDoneSignals are reasoning substrings that mean the model
// attached a "done" action to a batch while still describing unfinished
// work — the driver treats that "done" as a mistake and keeps going
// instead of ending the test early.
var prematureDoneSignals = []string{
	"still need", "remaining", "more steps", "not yet", "haven't completed",
	"next step", "continue with", "haven't done", "not complete", "incomplete",
}

// Viewport is the browser frame size the driver reports to the model, so
// coordinate-addressed actions (click, scroll, drag) are grounded in the
// actual pixel dimensions the screenshot was taken at.
type Viewport struct {
	Width  int
	Height int
}

// Driver runs one test to completion (or failure) against a single live
// page.
type Driver struct {
	Client          provider.Client
	Exec            pageExecutor
	MaxSteps        int
	Viewport        Viewport
	RetryNoResponse int // model calls that may come back empty/unparseable before giving up; default 2
}

// New returns a Driver ready to run tests against exec using client,
// stopping after maxSteps executed actions. viewport is reported in every
// prompt (spec's AgenticDriver inputs: {maxSteps, viewport, ...}).
func New(client provider.Client, exec pageExecutor, maxSteps int, viewport Viewport) *Driver {
	return &Driver{Client: client, Exec: exec, MaxSteps: maxSteps, Viewport: viewport, RetryNoResponse: 2}
}

// Run drives test to completion. It returns the steps taken regardless of
// outcome, and a non-nil error when the test did not complete successfully
// (the model reported failure, the run stalled, a browser action could not
// be re-executed, or the step budget ran out).
func (d *Driver) Run(ctx context.Context, test model.Test) ([]model.RecordedStep, error) {
	return d.runFrom(ctx, test, nil)
}

// Continue resumes the agentic loop from seed — steps already executed
// against the current page (typically by a replay of a known-good prefix)
// — so the HealingOrchestrator's partial-replay tier can hand control back
// to the model without re-deriving everything from scratch. The returned
// slice is seed plus whatever new steps this call executes.
func (d *Driver) Continue(ctx context.Context, test model.Test, seed []model.RecordedStep) ([]model.RecordedStep, error) {
	return d.runFrom(ctx, test, seed)
}

func (d *Driver) runFrom(ctx context.Context, test model.Test, seed []model.RecordedStep) ([]model.RecordedStep, error) {
	history := append([]model.RecordedStep(nil), seed...)
	var pendingBatch []model.Action
	var pendingUsage *provider.TokenUsage
	lastFailure := ""
	executed := 0

	for executed < d.MaxSteps {
		select {
		case <-ctx.Done():
			return history, ctx.Err()
		default:
		}

		if len(pendingBatch) == 0 {
			actions, usage, err := d.nextBatch(ctx, test, history, lastFailure)
			if err != nil {
				return history, err
			}
			pendingBatch = actions
			pendingUsage = usage
		}

		action := pendingBatch[0]
		pendingBatch = pendingBatch[1:]
		// The usage for this model call is attributed to the first step
		// drawn from its batch only, so summing tokens across steps doesn't
		// double-count a single call that produced several actions.
		stepInput, stepOutput := 0, 0
		if pendingUsage != nil {
			stepInput, stepOutput = pendingUsage.InputTokens, pendingUsage.OutputTokens
			pendingUsage = nil
		}

		if action.Type == model.ActionDone {
			history = append(history, model.RecordedStep{
				Action: action, Mode: model.ModeAgentic, Timestamp: time.Now(),
				InputTokens: stepInput, OutputTokens: stepOutput,
			})
			if !action.Success {
				return history, fmt.Errorf("test reported failure: %s", action.Reason)
			}
			return history, nil
		}

		result, execErr := d.Exec.Execute(action)
		if execErr != nil {
			return history, fmt.Errorf("execute action %s: %w", action.Signature(), execErr)
		}

		step := model.RecordedStep{
			Action:       action,
			ElementInfo:  result.ElementInfo,
			Screenshot:   result.ScreenshotB64,
			Timestamp:    result.Timestamp,
			Mode:         model.ModeAgentic,
			InputTokens:  stepInput,
			OutputTokens: stepOutput,
		}
		if result.Err != nil {
			step.Error = result.Err.Error()
			lastFailure = result.Err.Error()
			pendingBatch = nil // abandon the rest of this batch; re-query with the failure
		} else {
			lastFailure = ""
		}
		history = append(history, step)
		executed++

		if stalled(history) {
			return history, fmt.Errorf("stalled: repeated %q three times in a row", action.Signature())
		}
	}

	return history, fmt.Errorf("reached max steps (%d) without the test completing", d.MaxSteps)
}

// nextBatch calls the model for the next batch of actions, retrying up to
// RetryNoResponse times when the response is empty, unparseable, or
// trims down to nothing. Unknown action types or an empty actions array
// are not retried — they're coerced into a failing done by validateActions
// before trimBatch ever sees them, per spec's "unknown variants or fields
// coerce to a done{success:false}" contract.
func (d *Driver) nextBatch(ctx context.Context, test model.Test, history []model.RecordedStep, lastFailure string) ([]model.Action, *provider.TokenUsage, error) {
	retries := d.RetryNoResponse
	if retries <= 0 {
		retries = 2
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		req := provider.Request{
			SystemPrompt: systemPrompt,
			UserText:     buildUserText(test, d.Viewport, history, lastFailure),
			ImagePNG:     screenshotFor(d.Exec, history),
		}

		resp, err := d.Client.Next(ctx, req)
		if err != nil {
			lastErr = fmt.Errorf("No response from model: %w", err)
			continue
		}
		if resp == nil || strings.TrimSpace(resp.Text) == "" {
			lastErr = fmt.Errorf("No response from model")
			continue
		}

		env, perr := parseEnvelope(resp.Text)
		if perr != nil {
			lastErr = fmt.Errorf("Failed to parse model response: %w", perr)
			continue
		}

		actions := trimBatch(validateActions(env.Actions), env.Reasoning)
		if len(actions) == 0 {
			lastErr = fmt.Errorf("Model response trimmed to an empty batch")
			continue
		}
		return actions, resp.Usage, nil
	}
	return nil, nil, lastErr
}

// trimBatch cuts actions at the first "done": if the model's stated
// reasoning (or the done action's own Reason) contains a premature-done
// signal, the done action is dropped and everything before it is kept, so
// the driver keeps going instead of ending early. Otherwise the batch is
// kept through and including the done action.
func trimBatch(actions []model.Action, reasoning string) []model.Action {
	for i, a := range actions {
		if a.Type != model.ActionDone {
			continue
		}
		if hasPrematureDoneSignal(reasoning) || hasPrematureDoneSignal(a.Reason) {
			return actions[:i]
		}
		return actions[:i+1]
	}
	return actions
}

func hasPrematureDoneSignal(text string) bool {
	lower := strings.ToLower(text)
	for _, s := range prematureDoneSignals {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// stalled reports whether the last three executed actions share a
// signature — the driver's repetition guard against a model stuck
// retrying the same doomed action.
func stalled(history []model.RecordedStep) bool {
	n := len(history)
	if n < 3 {
		return false
	}
	sig := history[n-1].Action.Signature()
	return history[n-2].Action.Signature() == sig && history[n-3].Action.Signature() == sig
}

// screenshotFor returns the PNG bytes to send with the next model call: the
// screenshot from the most recent step if there is one (it already reflects
// the current page, whether that step succeeded or failed), or a fresh
// initial screenshot when history is empty.
func screenshotFor(exec pageExecutor, history []model.RecordedStep) []byte {
	var b64 string
	if n := len(history); n > 0 {
		b64 = history[n-1].Screenshot
	} else if shot, err := exec.Screenshot(); err == nil {
		b64 = shot
	}
	if b64 == "" {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil
	}
	return data
}
