package agent

import (
	"fmt"
	"strings"

	"github.com/zentest-dev/zentest/internal/model"
)

// systemPrompt is sent once per call as Request.SystemPrompt. It fixes the
// JSON envelope contract and the available action vocabulary; the model
// never sees Go type names, only this description.
const systemPrompt = `You are driving a real web browser to carry out a single described test.

You will be shown a screenshot of the current page and the test's
description. Reply with nothing but a JSON object of this shape:

{"reasoning": "short explanation", "actions": [ ... ]}

Each action in "actions" is one of:
  {"type":"click","x":int,"y":int,"button":"left"|"right"|"middle"}
  {"type":"double_click","x":int,"y":int}
  {"type":"mouse_move","x":int,"y":int}
  {"type":"drag","sx":int,"sy":int,"ex":int,"ey":int}
  {"type":"click_button","name":"...","exact":bool}
  {"type":"click_text","text":"...","exact":bool}
  {"type":"select_input","field":"...","value":"..."}
  {"type":"type","text":"..."}
  {"type":"key","combo":"Enter"|"Control+a"|...}
  {"type":"scroll","direction":"up"|"down","amount":int}
  {"type":"wait","ms":int}
  {"type":"assert_text","text":"..."}
  {"type":"assert_not_text","text":"..."}
  {"type":"assert_visible","x":int,"y":int}
  {"type":"done","success":bool,"reason":"..."}

Batch a few actions together when you're confident about what comes next.
Avoid "drag" when click-based actions can reach the same result.
Only emit "done" once the test's description is fully satisfied; if you are
not actually finished, do not emit "done" — keep acting instead.`

// buildUserText composes the per-step user message: the test under test,
// the viewport the screenshot was captured at (coordinate-addressed
// actions are meaningless without it), the running history of what's
// already happened, and the last failure (if any), so the model can
// recover instead of repeating a doomed action.
func buildUserText(test model.Test, viewport Viewport, history []model.RecordedStep, lastFailure string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Test: %s\n%s\n\nViewport: %dx%d\n\n", test.Name, test.Description, viewport.Width, viewport.Height)

	if n := len(history); n > 0 {
		b.WriteString("Actions taken so far:\n")
		start := 0
		if n > 10 {
			start = n - 10
		}
		for _, step := range history[start:] {
			status := "ok"
			if step.Error != "" {
				status = "FAILED: " + step.Error
			}
			fmt.Fprintf(&b, "- %s (%s)\n", step.Action.Signature(), status)
		}
		b.WriteString("\n")
	}

	if lastFailure != "" {
		fmt.Fprintf(&b, "Your last action failed: %s\nAdjust your approach.\n\n", lastFailure)
	}

	b.WriteString("A screenshot of the current page is attached. What should happen next?")
	return b.String()
}
