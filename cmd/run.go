package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zentest-dev/zentest/internal/parallel"
	"github.com/zentest-dev/zentest/internal/provider"
	"github.com/zentest-dev/zentest/internal/runner"
	"github.com/zentest-dev/zentest/internal/runrecord"
	"github.com/zentest-dev/zentest/internal/util"
	"github.com/zentest-dev/zentest/internal/zconfig"
	"github.com/zentest-dev/zentest/internal/zreport"
)

func newRunCmd() *cobra.Command {
	var (
		configPath     string
		env            string
		agentic        bool
		noHeal         bool
		headless       bool
		headed         bool
		verbose        bool
		maxSteps       int
		parallelSuites int
	)

	cmd := &cobra.Command{
		Use:   "run [suite]",
		Short: "Run one suite, or every suite under the configured tests directory",
		Long: `Run executes a test suite: replaying its recorded steps where a sidecar
already exists, deriving fresh steps agentically where one doesn't, and
escalating a broken replay through the healing pipeline before giving up.

Example:
  zentest run login
  zentest run login --env staging --headed
  zentest run --agentic --max-steps 60`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := zconfig.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			agenticClient, err := provider.NewClient(cfg.Provider, cfg.APIKeyForProvider(cfg.Provider), cfg.Models.AgenticModel)
			if err != nil {
				return err
			}
			healerClient, err := provider.NewClient(cfg.Provider, cfg.APIKeyForProvider(cfg.Provider), cfg.Models.HealerModel)
			if err != nil {
				return err
			}

			r := runner.New(cfg, agenticClient, nil, healerClient)

			suitePaths, err := resolveSuitePaths(cfg.TestsDir, args)
			if err != nil {
				return err
			}
			if len(suitePaths) == 0 {
				return fmt.Errorf("no suite files found under %s", cfg.TestsDir)
			}

			var headlessOverride *bool
			switch {
			case headed:
				v := false
				headlessOverride = &v
			case headless:
				v := true
				headlessOverride = &v
			}

			outputs := make([]string, len(suitePaths))
			passed := make([]bool, len(suitePaths))

			tasks := make([]parallel.Task, len(suitePaths))
			for i, suitePath := range suitePaths {
				i, suitePath := i, suitePath
				tasks[i] = func() error {
					var buf bytes.Buffer
					ok, err := runOneSuite(r, cfg, suitePath, opts(env, agentic, noHeal, headlessOverride, maxSteps, verbose), &buf)
					outputs[i] = buf.String()
					passed[i] = ok
					return err
				}
			}

			errs := parallel.Execute(context.Background(), tasks, parallelSuites)

			overallPassed := true
			var firstErr error
			for i, suitePath := range suitePaths {
				fmt.Print(outputs[i])
				if !passed[i] {
					overallPassed = false
				}
				if errs[i] != nil && firstErr == nil {
					firstErr = fmt.Errorf("run %s: %w", suitePath, errs[i])
				}
			}
			if firstErr != nil {
				return firstErr
			}

			if !overallPassed {
				return fmt.Errorf("one or more tests failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (default: search upward for zentest.yaml)")
	cmd.Flags().StringVar(&env, "env", "", "Named environment to resolve baseUrl from")
	cmd.Flags().BoolVar(&agentic, "agentic", false, "Force fresh agentic derivation for every test, skipping replay and healing")
	cmd.Flags().BoolVar(&noHeal, "no-heal", false, "Fail a test outright on a broken replay instead of healing it")
	cmd.Flags().BoolVar(&headless, "headless", false, "Force headless mode (overrides config)")
	cmd.Flags().BoolVar(&headed, "headed", false, "Force a visible browser window (overrides config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Emit machine-readable per-step JSON trace lines")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "Override the agentic step budget (default: config's maxSteps)")
	cmd.Flags().IntVar(&parallelSuites, "parallel", 1, "Run up to this many suites concurrently (1 = sequential)")

	return cmd
}

// opts builds one runner.Options, shared by every suite in a run invocation.
func opts(env string, agentic, noHeal bool, headlessOverride *bool, maxSteps int, verbose bool) runner.Options {
	return runner.Options{
		Env:      env,
		Agentic:  agentic,
		NoHeal:   noHeal,
		Headless: headlessOverride,
		MaxSteps: maxSteps,
		Verbose:  verbose,
	}
}

// runOneSuite runs a single suite, writes its run-directory artifacts, and
// renders its summary to w. It returns whether every test in the suite
// passed; a non-nil error means the suite couldn't be run at all (as
// opposed to running and failing).
func runOneSuite(r *runner.Runner, cfg *zconfig.Config, suitePath string, o runner.Options, w *bytes.Buffer) (bool, error) {
	suiteName := strings.TrimSuffix(filepath.Base(suitePath), filepath.Ext(suitePath))
	fmt.Fprintf(w, "%s %s\n", util.EmojiMouse, filepath.Base(suitePath))

	runDir, dirErr := runrecord.NewDir(cfg.RunsDir, suiteName, time.Now())
	if dirErr == nil {
		o.RunDir = runDir
	}

	results, runErr := r.RunSuite(context.Background(), suitePath, o)
	if runErr != nil && len(results) == 0 {
		return false, runErr
	}

	if dirErr == nil {
		_ = runrecord.WriteResults(runDir, results)
		if runErr != nil {
			_ = runrecord.WriteError(runDir, runErr)
		}
		_ = runrecord.Prune(cfg.RunsDir, suiteName, runrecord.DefaultKeep)
	}

	summary := zreport.Summary{
		SuiteName: filepath.Base(suitePath),
		Results:   results,
		Model:     cfg.Models.AgenticModel,
	}
	zreport.Write(w, summary)
	return summary.Passed(), nil
}

// resolveSuitePaths returns the one suite named in args, or every *.md
// suite under testsDir when args is empty.
func resolveSuitePaths(testsDir string, args []string) ([]string, error) {
	if len(args) > 0 {
		name := args[0]
		if !strings.HasSuffix(name, ".md") {
			name += ".md"
		}
		path := name
		if !filepath.IsAbs(path) {
			if _, err := os.Stat(path); err != nil {
				path = filepath.Join(testsDir, name)
			}
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("suite file not found: %s", path)
		}
		return []string{path}, nil
	}

	entries, err := os.ReadDir(testsDir)
	if err != nil {
		return nil, fmt.Errorf("read tests directory %s: %w", testsDir, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".md" {
			paths = append(paths, filepath.Join(testsDir, e.Name()))
		}
	}
	return paths, nil
}
