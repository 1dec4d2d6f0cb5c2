// Package builder turns a suite's recorded steps into a Playwright-style
// test script plus the sidecar that preserves the intent behind it. The
// generated script is deterministic output of the Builder, not something a
// human is meant to hand-edit; the sidecar is the editable source of truth
// (the suite markdown describes what, the sidecar records how).
package builder

import (
	"fmt"
	"strings"

	"github.com/zentest-dev/zentest/internal/model"
)

// Result is everything Build produces for one suite.
type Result struct {
	Script  string
	Sidecar *model.SuiteSidecar
}

// Build renders suite's tests into a single script file, given each test's
// recorded steps keyed by test name. Tests with no recorded steps are
// skipped entirely (there is nothing to generate and nothing to record).
func Build(suite *model.TestSuite, stepsByTest map[string][]model.RecordedStep) Result {
	var b strings.Builder
	fmt.Fprintf(&b, "import { test, expect } from '@playwright/test';\n\n")
	fmt.Fprintf(&b, "test.describe(%s, () => {\n", quote(suite.Name))

	sidecar := &model.SuiteSidecar{}

	for _, tc := range suite.Tests {
		steps, ok := stepsByTest[tc.Name]
		if !ok || len(steps) == 0 {
			continue
		}

		fmt.Fprintf(&b, "  test(%s, async ({ page }) => {\n", quote(tc.Name))
		writeTestBody(&b, steps)
		b.WriteString("  });\n\n")

		sidecar.Tests = append(sidecar.Tests, model.SidecarTest{Name: tc.Name, Steps: steps})
	}

	b.WriteString("});\n")

	return Result{Script: b.String(), Sidecar: sidecar}
}

func writeTestBody(b *strings.Builder, steps []model.RecordedStep) {
	var lastAssertion *model.Action

	for _, step := range steps {
		if isAssertion(step.Action) {
			if lastAssertion != nil && *lastAssertion == step.Action {
				continue // collapse a run of identical consecutive assertions
			}
			a := step.Action
			lastAssertion = &a
		} else {
			lastAssertion = nil
		}

		lines := translateStep(step)
		if len(lines) == 0 {
			continue
		}
		if step.Reasoning != "" {
			fmt.Fprintf(b, "    // %s\n", step.Reasoning)
		}
		for _, line := range lines {
			fmt.Fprintf(b, "    %s\n", line)
		}
	}
}
