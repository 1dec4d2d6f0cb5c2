package suitefile

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		stem       string
		wantSuite  string
		wantTests  int
		wantFirst  string
		wantFirstD string
	}{
		{
			name: "heading and one test",
			content: "# auth\n\n## login\nlog in with foo@example.com / hunter2\n",
			stem:       "auth-fallback",
			wantSuite:  "auth",
			wantTests:  1,
			wantFirst:  "login",
			wantFirstD: "log in with foo@example.com / hunter2",
		},
		{
			name:      "no heading falls back to stem",
			content:   "## login\ndo the thing\n",
			stem:      "auth",
			wantSuite: "auth",
			wantTests: 1,
		},
		{
			name:      "empty test dropped",
			content:   "# s\n\n## empty\n\n## real\nhas a description\n",
			stem:      "s",
			wantSuite: "s",
			wantTests: 1,
			wantFirst: "real",
		},
		{
			name:      "multiple tests ordered",
			content:   "# suite\n## a\ndesc a\n## b\ndesc b\n",
			stem:      "suite",
			wantSuite: "suite",
			wantTests: 2,
			wantFirst: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.content, tt.stem)
			if got.Name != tt.wantSuite {
				t.Errorf("suite name = %q, want %q", got.Name, tt.wantSuite)
			}
			if len(got.Tests) != tt.wantTests {
				t.Fatalf("len(Tests) = %d, want %d (%+v)", len(got.Tests), tt.wantTests, got.Tests)
			}
			if tt.wantFirst != "" && got.Tests[0].Name != tt.wantFirst {
				t.Errorf("Tests[0].Name = %q, want %q", got.Tests[0].Name, tt.wantFirst)
			}
			if tt.wantFirstD != "" && got.Tests[0].Description != tt.wantFirstD {
				t.Errorf("Tests[0].Description = %q, want %q", got.Tests[0].Description, tt.wantFirstD)
			}
		})
	}
}

func TestParseEmptySuite(t *testing.T) {
	got := Parse("", "empty")
	if len(got.Tests) != 0 {
		t.Errorf("expected no tests, got %d", len(got.Tests))
	}
}
