// Package runrecord manages the on-disk artifact directory for a single
// suite run: results.json, an optional error.txt, and a screenshot per
// failing test. Grounded on the checkpoint-directory idiom in
// pkg/ai (one directory per run, JSON files written into it), adapted from
// age-based retention to a count-based one: keep the newest N run
// directories per suite rather than expiring by wall-clock age, since a
// suite run cadence (manual, CI-triggered) doesn't map cleanly to a TTL.
package runrecord

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zentest-dev/zentest/internal/util"
)

// DefaultKeep is how many run directories Prune retains per suite.
const DefaultKeep = 10

// TestResult summarizes one test's outcome for results.json.
type TestResult struct {
	Name        string        `json:"name"`
	Passed      bool          `json:"passed"`
	Reason      string        `json:"reason,omitempty"`
	Duration    time.Duration `json:"durationNs"`
	ActionCount int           `json:"actionCount"`
	HealTier    int           `json:"healTier,omitempty"` // 0 if no healing was needed
	InputTokens int           `json:"inputTokens"`
	OutputTokens int          `json:"outputTokens"`
}

// NewDir creates and returns a fresh run directory under baseDir for
// suiteName, named `<suite>-<compact-timestamp>-<uuid-suffix>` so two runs
// started within the same second never collide.
func NewDir(baseDir, suiteName string, now time.Time) (string, error) {
	stamp := now.UTC().Format("20060102T150405")
	name := fmt.Sprintf("%s-%s-%s", suiteName, stamp, uuid.NewString()[:8])
	dir := filepath.Join(baseDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create run dir %s: %w", dir, err)
	}
	return dir, nil
}

// WriteResults serializes results to <dir>/results.json.
func WriteResults(dir string, results []TestResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "results.json"), data, 0644); err != nil {
		return fmt.Errorf("write results.json: %w", err)
	}
	return nil
}

// WriteError records a run-level failure (one that stopped the suite
// before results could be meaningfully compared) to <dir>/error.txt.
func WriteError(dir string, runErr error) error {
	if runErr == nil {
		return nil
	}
	if err := os.WriteFile(filepath.Join(dir, "error.txt"), []byte(runErr.Error()+"\n"), 0644); err != nil {
		return fmt.Errorf("write error.txt: %w", err)
	}
	return nil
}

// SaveScreenshot base64-decodes b64 and writes it to <dir>/<name>.png. name
// is sanitized first since it may originate as a free-form test name.
func SaveScreenshot(dir, name, b64 string) error {
	if b64 == "" {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("decode screenshot %s: %w", name, err)
	}
	path := filepath.Join(dir, util.SanitizeFilename(name)+".png")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write screenshot %s: %w", path, err)
	}
	return nil
}

// Prune keeps only the newest keep run directories whose name starts with
// "<suiteName>-" under baseDir, deleting the rest. Directory names sort
// chronologically because the timestamp component is fixed-width and
// lexicographic order matches time order.
func Prune(baseDir, suiteName string, keep int) error {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read run base dir %s: %w", baseDir, err)
	}

	prefix := suiteName + "-"
	var matches []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			matches = append(matches, e.Name())
		}
	}
	if len(matches) <= keep {
		return nil
	}

	sort.Strings(matches) // oldest first; the timestamp prefix makes this chronological
	toRemove := matches[:len(matches)-keep]
	for _, name := range toRemove {
		if err := os.RemoveAll(filepath.Join(baseDir, name)); err != nil {
			return fmt.Errorf("remove stale run dir %s: %w", name, err)
		}
	}
	return nil
}
