package model

import "time"

// ElementInfo is captured at click time by probing the DOM at the click
// coordinate. Selector is the best-effort locator derived under the
// priority order documented on DeriveSelector (selector.go).
type ElementInfo struct {
	Tag            string `json:"tag,omitempty"`
	Text           string `json:"text,omitempty"` // truncated
	Role           string `json:"role,omitempty"`
	AccessibleName string `json:"accessibleName,omitempty"`
	ID             string `json:"id,omitempty"`
	Class          string `json:"class,omitempty"`
	Href           string `json:"href,omitempty"`
	Placeholder    string `json:"placeholder,omitempty"`
	AriaLabel      string `json:"ariaLabel,omitempty"`
	TestID         string `json:"testId,omitempty"`
	Selector       string `json:"selector,omitempty"`
}

// Mode distinguishes how a RecordedStep was produced.
type Mode string

const (
	ModeAgentic Mode = "agentic"
	ModeReplay  Mode = "replay"
)

// ActionResult is what BrowserExecutor.Execute returns for a single Action.
type ActionResult struct {
	Action       Action
	ScreenshotB64 string
	ElementInfo  *ElementInfo
	Err          error
	Timestamp    time.Time
}

// RecordedStep is created by the AgenticDriver and owned exclusively by the
// in-flight test; never mutated after creation.
type RecordedStep struct {
	Action       Action       `json:"action"`
	Reasoning    string       `json:"reasoning,omitempty"`
	ElementInfo  *ElementInfo `json:"elementInfo,omitempty"`
	Screenshot   string       `json:"-"` // never serialized to disk
	GeneratedCode string      `json:"generatedCode,omitempty"`
	Error        string       `json:"error,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
	Mode         Mode         `json:"mode"`
	// InputTokens/OutputTokens carry the token usage of the model call that
	// produced this step's batch, attributed to the first step drawn from
	// that batch only (0 on every subsequent step of the same batch) so a
	// sum across a test's steps isn't inflated by double-counting.
	InputTokens  int `json:"inputTokens,omitempty"`
	OutputTokens int `json:"outputTokens,omitempty"`
}

// Test is a single named, described test within a TestSuite.
type Test struct {
	Name        string // kebab-case stable identifier
	Description string // free-form natural language
}

// TestSuite is an ordered sequence of Test sharing browser state; a failure
// stops subsequent tests.
type TestSuite struct {
	Name  string
	Tests []Test
}

// SidecarTest is one suite test's recorded steps, as persisted.
type SidecarTest struct {
	Name  string         `json:"name"`
	Steps []RecordedStep `json:"steps"`
}

// SuiteSidecar is the single source of truth linking a generated script
// file to the recorded intent that produced it. Persisted as JSON, one
// file per suite.
type SuiteSidecar struct {
	Tests []SidecarTest `json:"tests"`
}

// NamesSubsetInOrder reports whether the sidecar's test names form a
// prefix-order subset of suite's test names. It does not require the
// sidecar names to be a contiguous prefix of the suite, only that their
// relative order matches.
func (s *SuiteSidecar) NamesSubsetInOrder(suite *TestSuite) bool {
	j := 0
	for _, st := range s.Tests {
		found := false
		for ; j < len(suite.Tests); j++ {
			if suite.Tests[j].Name == st.Name {
				found = true
				j++
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// TestByName returns the sidecar entry for name, or nil.
func (s *SuiteSidecar) TestByName(name string) *SidecarTest {
	for i := range s.Tests {
		if s.Tests[i].Name == name {
			return &s.Tests[i]
		}
	}
	return nil
}
