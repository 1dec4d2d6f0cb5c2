package heal

import (
	"strings"
	"testing"
)

const sampleScript = `import { test, expect } from '@playwright/test';

test.describe('auth', () => {
  test('login', async ({ page }) => {
    // open the sign-in form
    await page.getByRole('button', { name: 'Sign In', exact: true }).click();
    await page.getByTestId('email').fill('a@b.com');
  });

  test('logout', async ({ page }) => {
    await page.getByText('Log out', { exact: true }).click();
  });
});
`

func TestFindTestBlockLocatesByName(t *testing.T) {
	start, end, ok := FindTestBlock(sampleScript, "login")
	if !ok {
		t.Fatal("expected to find the login block")
	}
	block := sampleScript[start:end]
	if !strings.Contains(block, "Sign In") {
		t.Errorf("block doesn't contain expected content: %q", block)
	}
	if strings.Contains(block, "Log out") {
		t.Errorf("block leaked into the next test: %q", block)
	}
}

func TestFindTestBlockMissingName(t *testing.T) {
	_, _, ok := FindTestBlock(sampleScript, "nonexistent")
	if ok {
		t.Error("expected not found for a name that isn't in the script")
	}
}

func TestReplaceTestBlockOnlyTouchesNamedTest(t *testing.T) {
	replacement := "  test('login', async ({ page }) => {\n    await page.getByTestId('new-button').click();\n  });\n"
	got, ok := ReplaceTestBlock(sampleScript, "login", replacement)
	if !ok {
		t.Fatal("expected replacement to succeed")
	}
	if strings.Contains(got, "Sign In") {
		t.Errorf("old login content should be gone: %s", got)
	}
	if !strings.Contains(got, "new-button") {
		t.Errorf("new login content should be present: %s", got)
	}
	if !strings.Contains(got, "Log out") {
		t.Errorf("logout test should be untouched: %s", got)
	}
}
