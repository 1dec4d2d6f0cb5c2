// Package suitefile parses the markdown test-source format: a `#` heading
// names the suite (defaulting to the file stem), each `##` heading starts a
// new test named after the heading text, and the lines up to the next `##`
// (trimmed) form that test's description. Empty tests are dropped.
// Structurally this mirrors the split-then-parse shape of
// pkg/flows/parser.go (ParseMaestroFlow splits a document on a delimiter
// and builds a typed result line by line), adapted from a `---`-delimited
// two-part YAML document to a heading-delimited markdown document.
package suitefile

import (
	"bufio"
	"strings"

	"github.com/zentest-dev/zentest/internal/model"
)

// Parse reads suite source text and the file's stem (used when no `#`
// heading is present) into a TestSuite.
func Parse(content, stem string) *model.TestSuite {
	suite := &model.TestSuite{Name: stem}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var currentName string
	var descLines []string
	haveTest := false

	flush := func() {
		if !haveTest {
			return
		}
		desc := strings.TrimSpace(strings.Join(descLines, "\n"))
		if currentName != "" && desc != "" {
			suite.Tests = append(suite.Tests, model.Test{Name: currentName, Description: desc})
		}
		descLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "## "):
			flush()
			currentName = strings.TrimSpace(strings.TrimPrefix(line, "## "))
			haveTest = true
		case strings.HasPrefix(line, "# "):
			suite.Name = strings.TrimSpace(strings.TrimPrefix(line, "# "))
		default:
			if haveTest {
				descLines = append(descLines, line)
			}
		}
	}
	flush()

	return suite
}
