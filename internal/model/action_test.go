package model

import "testing"

func TestActionSignature(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   string
	}{
		{"click", Action{Type: ActionClick, X: 10, Y: 20}, "click:10,20:"},
		{"click with button", Action{Type: ActionClick, X: 10, Y: 20, Button: "right"}, "click:10,20:right"},
		{"click_button", Action{Type: ActionClickButton, Name: "Sign In", Exact: true}, "click_button:Sign In:true"},
		{"type", Action{Type: ActionTyping, Text: "hello"}, "type:hello"},
		{"select_input", Action{Type: ActionSelectInput, Field: "Email", Value: "a@b.com"}, "select_input:Email:a@b.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.action.Signature(); got != tt.want {
				t.Errorf("Signature() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionSignatureStableAcrossCalls(t *testing.T) {
	a := Action{Type: ActionClick, X: 1, Y: 2}
	if a.Signature() != a.Signature() {
		t.Error("Signature is not stable across repeated calls")
	}
}

func TestNormalizeCombo(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cmd+a", "Meta+A"},
		{"ctrl+shift+s", "Control+Shift+S"},
		{"option+esc", "Alt+Escape"},
		{"Control+C", "Control+C"},
		{"meta-k", "Meta+K"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeCombo(tt.in); got != tt.want {
				t.Errorf("NormalizeCombo(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeComboIdempotent(t *testing.T) {
	inputs := []string{"cmd+a", "ctrl+shift+s", "option+esc", "x"}
	for _, in := range inputs {
		once := NormalizeCombo(in)
		twice := NormalizeCombo(once)
		if once != twice {
			t.Errorf("NormalizeCombo(%q) = %q, NormalizeCombo(that) = %q; not idempotent", in, once, twice)
		}
	}
}
