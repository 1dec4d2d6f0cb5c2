package model

import "strings"

// DeriveSelector computes ElementInfo's best-effort CSS selector under the
// fixed priority order: data-testid > #id > [role][aria-label] >
// tag:has-text(text) for button/anchor with short text > tag.class1.class2
// > tag. This is the selector recorded on ElementInfo at click time; it is
// distinct from ScriptBuilder's buildLocator (internal/builder), which
// picks a Playwright-style locator for generated code and has its own,
// richer priority order used there.
func DeriveSelector(info *ElementInfo) string {
	if info == nil {
		return ""
	}
	if info.TestID != "" {
		return `[data-testid="` + info.TestID + `"]`
	}
	if info.ID != "" {
		return "#" + info.ID
	}
	if info.Role != "" && info.AriaLabel != "" {
		return `[role="` + info.Role + `"][aria-label="` + info.AriaLabel + `"]`
	}
	if (info.Tag == "button" || info.Tag == "a") && info.Text != "" && len(info.Text) <= 40 {
		return info.Tag + `:has-text("` + info.Text + `")`
	}
	if info.Class != "" {
		classes := strings.Fields(info.Class)
		if len(classes) > 0 {
			return info.Tag + "." + strings.Join(classes, ".")
		}
	}
	if info.Tag != "" {
		return info.Tag
	}
	return ""
}
