package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "zentest",
		Short: "Closed-loop agentic browser testing",
		Long: `Zentest derives browser tests from a plain-English description, replays
them deterministically once a script exists, and heals the script itself
when a replay breaks instead of failing the run outright.

Usage:
  zentest init                    # scaffold a tests/ directory and config
  zentest run [suite]             # run one suite, or every suite if none given
  zentest validate [suite]        # check a suite and its sidecar for drift`,
		Version: version,
	}

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newValidateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
