// Package model holds the data types shared across the agentic execution
// core: actions, element info, recorded steps, suites and their sidecar.
package model

import (
	"fmt"
	"strings"
)

// ActionType discriminates the Action tagged variant.
type ActionType string

const (
	ActionClick          ActionType = "click"
	ActionDoubleClick    ActionType = "double_click"
	ActionMouseMove      ActionType = "mouse_move"
	ActionDrag           ActionType = "drag"
	ActionClickButton    ActionType = "click_button"
	ActionClickText      ActionType = "click_text"
	ActionSelectInput    ActionType = "select_input"
	ActionTyping         ActionType = "type"
	ActionKey            ActionType = "key"
	ActionScroll         ActionType = "scroll"
	ActionWait           ActionType = "wait"
	ActionAssertText     ActionType = "assert_text"
	ActionAssertNotText  ActionType = "assert_not_text"
	ActionAssertVisible  ActionType = "assert_visible"
	ActionDone           ActionType = "done"
)

// IsKnown reports whether t is one of the variants this module
// recognizes. The model occasionally emits a malformed or unsupported
// action type; callers use this to coerce such an action into a failing
// done instead of routing it to the Executor, where it would hit the
// unreachable default case.
func (t ActionType) IsKnown() bool {
	switch t {
	case ActionClick, ActionDoubleClick, ActionMouseMove, ActionDrag,
		ActionClickButton, ActionClickText, ActionSelectInput, ActionTyping,
		ActionKey, ActionScroll, ActionWait, ActionAssertText,
		ActionAssertNotText, ActionAssertVisible, ActionDone:
		return true
	default:
		return false
	}
}

// ScrollDirection is the allowed value set for Action.Direction.
type ScrollDirection string

const (
	ScrollUp   ScrollDirection = "up"
	ScrollDown ScrollDirection = "down"
)

// Action is the closed sum type of everything the model may request. Only
// the fields relevant to Type are populated; the rest are zero. Exhaustive
// switches over Type are expected everywhere an Action is consumed
// (Executor, ScriptBuilder) — new variants must be added to both.
type Action struct {
	Type ActionType `json:"type"`

	// coordinate-addressed
	X, Y   int    `json:"x,omitempty"`
	Button string `json:"button,omitempty"` // click only; "left" default
	SX, SY int    `json:"sx,omitempty"`     // drag start
	EX, EY int    `json:"ex,omitempty"`     // drag end

	// semantic click / form fill
	Name  string `json:"name,omitempty"`  // click_button
	Text  string `json:"text,omitempty"`  // click_text, assert_text, assert_not_text
	Exact bool   `json:"exact,omitempty"` // click_button, click_text, select_input
	Field string `json:"field,omitempty"` // select_input
	Value string `json:"value,omitempty"` // select_input

	// keyboard
	Combo string `json:"combo,omitempty"` // key

	// scroll
	Direction ScrollDirection `json:"direction,omitempty"`
	Amount    int             `json:"amount,omitempty"`

	// wait
	Ms int `json:"ms,omitempty"`

	// done
	Success bool   `json:"success,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Signature returns the stable string used by the AgenticDriver's
// repetition guard: variant + salient fields, nothing else.
// Two actions with the same Signature are considered "the same action" for
// stall detection, regardless of reasoning or timestamp.
func (a Action) Signature() string {
	switch a.Type {
	case ActionClick:
		return fmt.Sprintf("click:%d,%d:%s", a.X, a.Y, a.Button)
	case ActionDoubleClick:
		return fmt.Sprintf("double_click:%d,%d", a.X, a.Y)
	case ActionMouseMove:
		return fmt.Sprintf("mouse_move:%d,%d", a.X, a.Y)
	case ActionDrag:
		return fmt.Sprintf("drag:%d,%d:%d,%d", a.SX, a.SY, a.EX, a.EY)
	case ActionClickButton:
		return fmt.Sprintf("click_button:%s:%t", a.Name, a.Exact)
	case ActionClickText:
		return fmt.Sprintf("click_text:%s:%t", a.Text, a.Exact)
	case ActionSelectInput:
		return fmt.Sprintf("select_input:%s:%s", a.Field, a.Value)
	case ActionTyping:
		return fmt.Sprintf("type:%s", a.Text)
	case ActionKey:
		return fmt.Sprintf("key:%s", a.Combo)
	case ActionScroll:
		return fmt.Sprintf("scroll:%s:%d", a.Direction, a.Amount)
	case ActionWait:
		return fmt.Sprintf("wait:%d", a.Ms)
	case ActionAssertText:
		return fmt.Sprintf("assert_text:%s", a.Text)
	case ActionAssertNotText:
		return fmt.Sprintf("assert_not_text:%s", a.Text)
	case ActionAssertVisible:
		return fmt.Sprintf("assert_visible:%d,%d", a.X, a.Y)
	case ActionDone:
		return fmt.Sprintf("done:%t:%s", a.Success, a.Reason)
	default:
		return "unknown:" + string(a.Type)
	}
}

// NormalizeCombo folds a key combo into its canonical form: cmd/command/meta
// → Meta, ctrl/control → Control, alt/option → Alt, esc → Escape, single
// letters upper-cased. Idempotent by construction: re-running it
// on its own output is a no-op because every token it produces is already
// in canonical form.
func NormalizeCombo(combo string) string {
	sep := "+"
	if strings.Contains(combo, "-") && !strings.Contains(combo, "+") {
		sep = "-"
	}
	parts := strings.Split(combo, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, normalizeToken(strings.TrimSpace(p)))
	}
	return strings.Join(out, "+")
}

func normalizeToken(tok string) string {
	lower := strings.ToLower(tok)
	switch lower {
	case "cmd", "command", "meta":
		return "Meta"
	case "ctrl", "control":
		return "Control"
	case "alt", "option":
		return "Alt"
	case "shift":
		return "Shift"
	case "esc":
		return "Escape"
	}
	if len(tok) == 1 {
		return strings.ToUpper(tok)
	}
	return tok
}
