package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zentest-dev/zentest/internal/sidecar"
	"github.com/zentest-dev/zentest/internal/suitefile"
	"github.com/zentest-dev/zentest/internal/zconfig"
)

func newValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate [suite]",
		Short: "Check a suite file and its sidecar for drift, without running anything",
		Long: `Validate parses a suite's markdown source and its *.steps.json sidecar
(if one exists) and reports whether the sidecar's recorded tests still form
a valid prefix-order subset of the suite's current tests, without launching
a browser or calling a model.

Example:
  zentest validate login
  zentest validate tests/checkout.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := zconfig.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			paths, err := resolveSuitePaths(cfg.TestsDir, args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no suite files found under %s", cfg.TestsDir)
			}

			allValid := true
			for _, path := range paths {
				if err := validateSuite(path); err != nil {
					allValid = false
					fmt.Printf("❌ %s: %v\n", filepath.Base(path), err)
					continue
				}
				fmt.Printf("✅ %s\n", filepath.Base(path))
			}

			if !allValid {
				return fmt.Errorf("one or more suites failed validation")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (default: search upward for zentest.yaml)")
	return cmd
}

func validateSuite(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read suite: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	suite := suitefile.Parse(string(content), stem)

	if len(suite.Tests) == 0 {
		return fmt.Errorf("suite defines no tests (no `## heading` with a non-empty description found)")
	}

	sidecarPath := sidecar.Path(filepath.Dir(path), suite.Name)
	sc, err := sidecar.Load(sidecarPath)
	if err != nil {
		return fmt.Errorf("load sidecar: %w", err)
	}
	if sc == nil {
		fmt.Printf("   (no sidecar yet — every test will be derived agentically on first run)\n")
		return nil
	}

	if !sc.NamesSubsetInOrder(suite) {
		return fmt.Errorf("sidecar's recorded tests are not a prefix-order subset of the suite's current tests; delete %s to force re-derivation", sidecarPath)
	}

	for _, st := range sc.Tests {
		if len(st.Steps) == 0 {
			fmt.Printf("   test %q has a sidecar entry with no recorded steps\n", st.Name)
		}
	}
	return nil
}
