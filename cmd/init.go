package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zentest-dev/zentest/internal/zconfig"
)

const exampleSuite = `# example

## user can sign in

Navigate to the sign-in page, enter valid credentials, and submit the form.
Confirm the page shows a welcome message for the signed-in user.
`

func newInitCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a tests/ directory and a zentest.yaml config",
		Long: `Init creates a tests directory with one example suite and a zentest.yaml
in the current directory, so "zentest run" has something to work with.

Example:
  zentest init
  zentest init --dir ./tests`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = "./tests"
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}

			examplePath := filepath.Join(dir, "example.md")
			if _, err := os.Stat(examplePath); os.IsNotExist(err) {
				if err := os.WriteFile(examplePath, []byte(exampleSuite), 0644); err != nil {
					return fmt.Errorf("write %s: %w", examplePath, err)
				}
				fmt.Printf("✅ wrote %s\n", examplePath)
			} else {
				fmt.Printf("   %s already exists, leaving it alone\n", examplePath)
			}

			cfg := zconfig.DefaultConfig()
			cfg.TestsDir = dir
			cfgPath := "zentest.yaml"
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				if err := cfg.Save(cfgPath); err != nil {
					return fmt.Errorf("write %s: %w", cfgPath, err)
				}
				fmt.Printf("✅ wrote %s\n", cfgPath)
			} else {
				fmt.Printf("   %s already exists, leaving it alone\n", cfgPath)
			}

			fmt.Println("\nSet an API key for your provider (e.g. ZENTEST_ANTHROPIC_API_KEY) and run:")
			fmt.Println("  zentest run example")
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory to scaffold suites into (default: ./tests)")
	return cmd
}
