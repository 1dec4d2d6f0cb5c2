// Package sidecar persists and loads the SuiteSidecar JSON file:
// `{tests:[{name, steps:[{action, elementInfo?, error?, timestamp,
// reasoning, generatedCode?}]}]}`. Screenshots are never serialized.
package sidecar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zentest-dev/zentest/internal/model"
)

// Path returns the `<suite>.steps.json` sidecar file path for a suite
// named name inside dir.
func Path(dir, name string) string {
	return filepath.Join(dir, name+".steps.json")
}

// Load reads and parses the sidecar for a suite. A missing file is not an
// error: callers get (nil, nil) and should treat the suite as having no
// recorded history yet.
func Load(path string) (*model.SuiteSidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sidecar %s: %w", path, err)
	}

	var sc model.SuiteSidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse sidecar %s: %w", path, err)
	}
	return &sc, nil
}

// Save serializes sc to path, creating parent directories as needed.
// RecordedStep's Screenshot field is json:"-" so it never round-trips here
// by construction ("retained only as long as the test
// runs; it is not serialized to disk").
func Save(path string, sc *model.SuiteSidecar) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create sidecar dir: %w", err)
	}
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write sidecar %s: %w", path, err)
	}
	return nil
}
