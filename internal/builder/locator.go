package builder

import (
	"fmt"
	"strings"

	"github.com/zentest-dev/zentest/internal/model"
)

// genericTags are the tags buildLocator refuses to emit a bare-tag
// selector for: too many matches on a real page to be a safe locator on
// their own.
var genericTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"div": true, "span": true, "a": true, "button": true, "input": true, "textarea": true,
	"label": true, "form": true, "section": true, "article": true, "header": true,
	"footer": true, "nav": true, "main": true, "aside": true,
}

// inputLikeTags never fall back to a raw CSS selector; buildLocator
// returns ("", false) for them rather than emit a brittle selector,
// forcing the caller to use a coordinate-click fallback.
var inputLikeTags = map[string]bool{"input": true, "textarea": true, "select": true, "button": true}

// buildLocator derives a Playwright-style locator expression for
// elementInfo, under a fixed priority order: data-testid > inferred
// role+accessible-name > label > placeholder > getByText(text,
// exact=true) > #id > raw selector iff non-generic. Inputs and buttons
// never fall back to a raw selector.
//
// Returns ("", false) when no safe locator can be derived — callers fall
// back to a raw-coordinate click.
func buildLocator(info *model.ElementInfo) (string, bool) {
	if info == nil {
		return "", false
	}

	if info.TestID != "" {
		return fmt.Sprintf("getByTestId(%s)", quote(info.TestID)), true
	}

	if role, name, ok := inferRoleAndName(info); ok {
		return fmt.Sprintf("getByRole(%s, { name: %s })", quote(role), quote(name)), true
	}

	if info.AccessibleName != "" {
		return fmt.Sprintf("getByLabel(%s)", quote(info.AccessibleName)), true
	}

	if info.Placeholder != "" {
		return fmt.Sprintf("getByPlaceholder(%s)", quote(info.Placeholder)), true
	}

	if info.Text != "" && len(info.Text) <= 80 {
		return fmt.Sprintf("getByText(%s, { exact: true })", quote(info.Text)), true
	}

	if info.ID != "" {
		return fmt.Sprintf("locator(%s)", quote("#"+info.ID)), true
	}

	if inputLikeTags[info.Tag] {
		return "", false
	}

	if info.Tag != "" && !genericTags[info.Tag] {
		return fmt.Sprintf("locator(%s)", quote(info.Tag)), true
	}

	return "", false
}

// inferRoleAndName derives an implicit ARIA role + accessible name for
// elements where one is well-defined: for inputs, role defaults to
// textbox; accessible name is taken from ariaLabel, else associated-label
// text, else name, else placeholder.
func inferRoleAndName(info *model.ElementInfo) (role, name string, ok bool) {
	role = info.Role
	if role == "" {
		switch info.Tag {
		case "input", "textarea":
			role = "textbox"
		case "button":
			role = "button"
		case "a":
			role = "link"
		}
	}
	if role == "" {
		return "", "", false
	}

	name = info.AriaLabel
	if name == "" {
		name = info.AccessibleName
	}
	if name == "" {
		name = info.Text
	}
	if name == "" {
		name = info.Placeholder
	}
	if name == "" {
		return "", "", false
	}
	return role, name, true
}

// escape handles backslash, single quote, newline, carriage return, tab.
func escape(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return r.Replace(s)
}

func quote(s string) string {
	return "'" + escape(s) + "'"
}
