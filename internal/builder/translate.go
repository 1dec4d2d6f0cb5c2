package builder

import (
	"fmt"

	"github.com/zentest-dev/zentest/internal/model"
)

// translateStep renders one RecordedStep as a Playwright-shaped statement
// (or statements) inside a generated test block. Assertions are rendered
// with expect(); everything else is a page/locator action. Consecutive
// duplicate assertions are deduplicated by the caller (builder.go), not
// here, since that needs the surrounding sequence.
func translateStep(step model.RecordedStep) []string {
	a := step.Action

	switch a.Type {
	case model.ActionClick:
		if loc, ok := buildLocator(step.ElementInfo); ok {
			return []string{fmt.Sprintf("await page.%s.click();", loc)}
		}
		return []string{fmt.Sprintf("await page.mouse.click(%d, %d);", a.X, a.Y)}

	case model.ActionDoubleClick:
		if loc, ok := buildLocator(step.ElementInfo); ok {
			return []string{fmt.Sprintf("await page.%s.dblclick();", loc)}
		}
		return []string{fmt.Sprintf("await page.mouse.dblclick(%d, %d);", a.X, a.Y)}

	case model.ActionMouseMove:
		return []string{fmt.Sprintf("await page.mouse.move(%d, %d);", a.X, a.Y)}

	case model.ActionDrag:
		// Recorded but not rendered: the agentic driver is steered away from
		// drag when an equivalent click-based flow exists, so a drag step
		// reaching the builder is rare enough that round-tripping it to a
		// Playwright mouse sequence isn't implemented yet.
		return []string{fmt.Sprintf(
			"// drag recorded (%d,%d) -> (%d,%d), not rendered", a.SX, a.SY, a.EX, a.EY,
		)}

	case model.ActionClickButton:
		return []string{fmt.Sprintf(
			"await page.getByRole('button', { name: %s, exact: %t }).click();",
			quote(a.Name), a.Exact,
		)}

	case model.ActionClickText:
		return []string{fmt.Sprintf(
			"await page.getByText(%s, { exact: %t }).click();",
			quote(a.Text), a.Exact,
		)}

	case model.ActionSelectInput:
		if loc, ok := buildLocator(step.ElementInfo); ok {
			return []string{fmt.Sprintf("await page.%s.fill(%s);", loc, quote(a.Value))}
		}
		return []string{fmt.Sprintf(
			"await page.getByLabel(%s).fill(%s);", quote(a.Field), quote(a.Value),
		)}

	case model.ActionTyping:
		if loc, ok := buildLocator(step.ElementInfo); ok {
			return []string{fmt.Sprintf("await page.%s.fill(%s);", loc, quote(a.Text))}
		}
		return []string{fmt.Sprintf("await page.keyboard.type(%s);", quote(a.Text))}

	case model.ActionKey:
		return []string{fmt.Sprintf("await page.keyboard.press(%s);", quote(model.NormalizeCombo(a.Combo)))}

	case model.ActionScroll:
		dy := a.Amount
		if a.Direction == model.ScrollUp {
			dy = -dy
		}
		return []string{fmt.Sprintf("await page.mouse.wheel(0, %d);", dy)}

	case model.ActionWait:
		return []string{fmt.Sprintf("await page.waitForTimeout(%d);", a.Ms)}

	case model.ActionAssertText:
		return []string{fmt.Sprintf("await expect(page.getByText(%s)).toBeVisible();", quote(a.Text))}

	case model.ActionAssertNotText:
		return []string{fmt.Sprintf("await expect(page.getByText(%s)).not.toBeVisible();", quote(a.Text))}

	case model.ActionAssertVisible:
		if loc, ok := buildLocator(step.ElementInfo); ok {
			return []string{fmt.Sprintf("await expect(page.%s).toBeVisible();", loc)}
		}
		return nil

	case model.ActionDone:
		return nil

	default:
		return []string{fmt.Sprintf("// unrecognized action %q, skipped", a.Type)}
	}
}

// isAssertion reports whether a step renders to an expect(...) statement,
// used by builder.go to collapse runs of identical consecutive assertions.
func isAssertion(a model.Action) bool {
	switch a.Type {
	case model.ActionAssertText, model.ActionAssertNotText, model.ActionAssertVisible:
		return true
	default:
		return false
	}
}
