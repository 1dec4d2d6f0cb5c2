package builder

import (
	"strings"
	"testing"

	"github.com/zentest-dev/zentest/internal/model"
)

func TestBuildGeneratesDescribeAndTest(t *testing.T) {
	suite := &model.TestSuite{
		Name: "auth",
		Tests: []model.Test{
			{Name: "login", Description: "log in with valid creds"},
			{Name: "logout", Description: "not recorded, should be skipped"},
		},
	}
	steps := map[string][]model.RecordedStep{
		"login": {
			{
				Action:      model.Action{Type: model.ActionClickButton, Name: "Sign In", Exact: true},
				Reasoning:   "open the sign-in form",
				ElementInfo: nil,
			},
			{
				Action:      model.Action{Type: model.ActionTyping, Text: "foo@example.com"},
				ElementInfo: &model.ElementInfo{Tag: "input", TestID: "email"},
			},
		},
	}

	res := Build(suite, steps)

	if !strings.Contains(res.Script, "test.describe('auth'") {
		t.Errorf("script missing describe block: %s", res.Script)
	}
	if !strings.Contains(res.Script, "test('login'") {
		t.Errorf("script missing login test: %s", res.Script)
	}
	if strings.Contains(res.Script, "test('logout'") {
		t.Errorf("logout should be skipped (no recorded steps): %s", res.Script)
	}
	if !strings.Contains(res.Script, "getByRole('button', { name: 'Sign In', exact: true })") {
		t.Errorf("missing click_button translation: %s", res.Script)
	}
	if !strings.Contains(res.Script, "getByTestId('email').fill('foo@example.com')") {
		t.Errorf("missing type translation with testid locator: %s", res.Script)
	}

	if len(res.Sidecar.Tests) != 1 || res.Sidecar.Tests[0].Name != "login" {
		t.Fatalf("sidecar should record only login, got %+v", res.Sidecar.Tests)
	}
}

func TestBuildCollapsesConsecutiveDuplicateAssertions(t *testing.T) {
	suite := &model.TestSuite{Name: "s", Tests: []model.Test{{Name: "t", Description: "d"}}}
	dup := model.Action{Type: model.ActionAssertText, Text: "Welcome"}
	steps := map[string][]model.RecordedStep{
		"t": {
			{Action: dup},
			{Action: dup},
			{Action: model.Action{Type: model.ActionAssertText, Text: "Different"}},
		},
	}

	res := Build(suite, steps)
	if got, want := strings.Count(res.Script, "getByText('Welcome')"), 1; got != want {
		t.Errorf("expected duplicate assertion collapsed to %d occurrence, got %d:\n%s", want, got, res.Script)
	}
	if !strings.Contains(res.Script, "getByText('Different')") {
		t.Errorf("distinct assertion should still render: %s", res.Script)
	}
}

func TestBuildSkipsTestsWithNoSteps(t *testing.T) {
	suite := &model.TestSuite{Name: "s", Tests: []model.Test{{Name: "empty", Description: "d"}}}
	res := Build(suite, map[string][]model.RecordedStep{})
	if strings.Contains(res.Script, "test(") {
		t.Errorf("expected no test blocks, got: %s", res.Script)
	}
	if len(res.Sidecar.Tests) != 0 {
		t.Errorf("expected empty sidecar, got %+v", res.Sidecar.Tests)
	}
}

func TestBuildLocatorPriority(t *testing.T) {
	tests := []struct {
		name string
		info *model.ElementInfo
		want string
		ok   bool
	}{
		{"nil info", nil, "", false},
		{"testid wins", &model.ElementInfo{TestID: "x", ID: "y"}, "getByTestId('x')", true},
		{"role+name inferred for input", &model.ElementInfo{Tag: "input", AriaLabel: "Email"}, "getByRole('textbox', { name: 'Email' })", true},
		{"label fallback", &model.ElementInfo{AccessibleName: "Username"}, "getByLabel('Username')", true},
		{"placeholder fallback", &model.ElementInfo{Placeholder: "Search..."}, "getByPlaceholder('Search...')", true},
		{"text fallback", &model.ElementInfo{Text: "Continue"}, "getByText('Continue', { exact: true })", true},
		{"id fallback", &model.ElementInfo{ID: "submit"}, "locator('#submit')", true},
		{"bare input never falls back to raw selector", &model.ElementInfo{Tag: "input"}, "", false},
		{"non-generic tag allowed", &model.ElementInfo{Tag: "custom-widget"}, "locator('custom-widget')", true},
		{"generic tag rejected", &model.ElementInfo{Tag: "div"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := buildLocator(tt.info)
			if got != tt.want || ok != tt.ok {
				t.Errorf("buildLocator(%+v) = (%q, %t), want (%q, %t)", tt.info, got, ok, tt.want, tt.ok)
			}
		})
	}
}
