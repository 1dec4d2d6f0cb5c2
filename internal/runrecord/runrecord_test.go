package runrecord

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDirCreatesUniqueDirectories(t *testing.T) {
	base := t.TempDir()
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	d1, err := NewDir(base, "login", now)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	d2, err := NewDir(base, "login", now)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	if d1 == d2 {
		t.Error("two runs in the same second should get distinct directories")
	}
	for _, d := range []string{d1, d2} {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Errorf("expected %s to exist as a directory", d)
		}
	}
}

func TestWriteResultsAndError(t *testing.T) {
	dir := t.TempDir()
	results := []TestResult{{Name: "login", Passed: true, ActionCount: 3}}
	if err := WriteResults(dir, results); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "results.json")); err != nil {
		t.Errorf("results.json not written: %v", err)
	}

	if err := WriteError(dir, errExample); err != nil {
		t.Fatalf("WriteError: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "error.txt")); err != nil {
		t.Errorf("error.txt not written: %v", err)
	}
}

var errExample = &testErr{"browser launch failed"}

type testErr struct{ msg string }

func (e *testErr) Error() string { return e.msg }

func TestPruneKeepsOnlyNewest(t *testing.T) {
	base := t.TempDir()
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	var dirs []string
	for i := 0; i < 5; i++ {
		d, err := NewDir(base, "suite", now.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatalf("NewDir: %v", err)
		}
		dirs = append(dirs, d)
	}

	if err := Prune(base, "suite", 2); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 directories after pruning, got %d", len(entries))
	}

	if _, err := os.Stat(dirs[len(dirs)-1]); err != nil {
		t.Errorf("newest run dir should survive pruning: %v", err)
	}
	if _, err := os.Stat(dirs[0]); err == nil {
		t.Error("oldest run dir should have been pruned")
	}
}

func TestPruneNoOpUnderKeepLimit(t *testing.T) {
	base := t.TempDir()
	now := time.Now()
	if _, err := NewDir(base, "suite", now); err != nil {
		t.Fatal(err)
	}
	if err := Prune(base, "suite", 10); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	entries, _ := os.ReadDir(base)
	if len(entries) != 1 {
		t.Errorf("expected the single dir to survive, got %d entries", len(entries))
	}
}
