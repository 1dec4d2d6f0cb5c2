package util

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces", "user can sign in", "user-can-sign-in"},
		{"slashes", "a/b\\c", "a-b-c"},
		{"mixed case", "Checkout Flow", "checkout-flow"},
		{"already safe", "login", "login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
