// Package runner implements the Runner: the top-level orchestration that
// loads a suite, decides per test whether a static replay of its sidecar
// is enough or an agentic (re)derivation is needed, routes replay failures
// to the HealingOrchestrator, and writes the run's artifacts.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zentest-dev/zentest/internal/agent"
	"github.com/zentest-dev/zentest/internal/browser"
	"github.com/zentest-dev/zentest/internal/builder"
	"github.com/zentest-dev/zentest/internal/heal"
	"github.com/zentest-dev/zentest/internal/model"
	"github.com/zentest-dev/zentest/internal/provider"
	"github.com/zentest-dev/zentest/internal/replay"
	"github.com/zentest-dev/zentest/internal/runrecord"
	"github.com/zentest-dev/zentest/internal/sidecar"
	"github.com/zentest-dev/zentest/internal/staticrun"
	"github.com/zentest-dev/zentest/internal/suitefile"
	"github.com/zentest-dev/zentest/internal/zconfig"
	"github.com/zentest-dev/zentest/internal/zreport"
)

// Options configures one invocation of Runner.RunSuite.
type Options struct {
	Env      string // selects Config.Environments[Env], falling back to BaseURL
	Agentic  bool   // force full re-derivation of every test, skipping replay and healing
	NoHeal   bool   // on a replay failure, fail the test instead of invoking heal.Orchestrator
	Headless *bool  // nil defers to Config.Headless
	MaxSteps int    // 0 defers to Config.MaxSteps
	Verbose  bool   // emit a zreport.StepEvent JSON line per step to stdout as each test finishes
	RunDir   string // when set, a failing test's last screenshot is saved here
}

// Runner ties the whole pipeline together for one suite file.
type Runner struct {
	Cfg           *zconfig.Config
	AgenticClient provider.Client
	BuilderClient provider.Client
	HealerClient  provider.Client
}

// New returns a Runner configured with cfg and the three model roles.
func New(cfg *zconfig.Config, agenticClient, builderClient, healerClient provider.Client) *Runner {
	return &Runner{Cfg: cfg, AgenticClient: agenticClient, BuilderClient: builderClient, HealerClient: healerClient}
}

// RunSuite runs every test in the suite file at suitePath (in order,
// stopping at the first test failure — later tests share accumulated
// browser state and assume earlier ones succeeded) and returns one
// runrecord.TestResult per test actually run.
func (r *Runner) RunSuite(ctx context.Context, suitePath string, opts Options) ([]runrecord.TestResult, error) {
	content, err := os.ReadFile(suitePath)
	if err != nil {
		return nil, fmt.Errorf("read suite file %s: %w", suitePath, err)
	}
	stem := strings.TrimSuffix(filepath.Base(suitePath), filepath.Ext(suitePath))
	suite := suitefile.Parse(string(content), stem)

	sidecarPath := sidecar.Path(filepath.Dir(suitePath), suite.Name)
	sc, err := sidecar.Load(sidecarPath)
	if err != nil {
		return nil, fmt.Errorf("load sidecar for %s: %w", suite.Name, err)
	}
	if sc == nil {
		sc = &model.SuiteSidecar{}
	}

	headless := r.Cfg.Headless
	if opts.Headless != nil {
		headless = *opts.Headless
	}
	maxSteps := r.Cfg.MaxSteps
	if opts.MaxSteps > 0 {
		maxSteps = opts.MaxSteps
	}

	vp := browser.Viewport{Width: r.Cfg.Viewport.Width, Height: r.Cfg.Viewport.Height}
	br, page, err := browser.Launch(headless, vp)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer br.Close()

	baseURL := r.Cfg.ResolveBaseURL(opts.Env)
	if baseURL != "" {
		if err := browser.Navigate(page, baseURL, 30*time.Second); err != nil {
			return nil, fmt.Errorf("navigate to %s: %w", baseURL, err)
		}
	}

	driverViewport := agent.Viewport{Width: r.Cfg.Viewport.Width, Height: r.Cfg.Viewport.Height}
	exec := browser.New(page)
	orchestrator := heal.New(r.AgenticClient, r.HealerClient, exec, maxSteps, driverViewport)

	scriptPath := filepath.Join(filepath.Dir(suitePath), suite.Name+".spec.ts")
	scriptBytes, _ := os.ReadFile(scriptPath) // a missing script is fine on a suite's first run
	script := string(scriptBytes)

	so, err := r.runStatic(ctx, scriptPath, script, baseURL, opts)
	if err != nil {
		return nil, err
	}

	stepsByTest := map[string][]model.RecordedStep{}
	for _, st := range sc.Tests {
		stepsByTest[st.Name] = st.Steps
	}

	var results []runrecord.TestResult
	for _, test := range suite.Tests {
		start := time.Now()
		steps, healTier, runErr := r.runOneTest(ctx, orchestrator, test, sc, stepsByTest, &script, opts, maxSteps, driverViewport, &so)
		duration := time.Since(start)

		stepsByTest[test.Name] = steps
		if opts.Verbose {
			zreport.WriteStepEvents(os.Stdout, test.Name, steps)
		}
		input, output := tokenTotals(steps)

		result := runrecord.TestResult{
			Name:         test.Name,
			Passed:       runErr == nil,
			ActionCount:  countExecuted(steps),
			Duration:     duration,
			HealTier:     healTier,
			InputTokens:  input,
			OutputTokens: output,
		}
		if runErr != nil {
			result.Reason = runErr.Error()
			if opts.RunDir != "" && len(steps) > 0 {
				if shot := steps[len(steps)-1].Screenshot; shot != "" {
					_ = runrecord.SaveScreenshot(opts.RunDir, test.Name, shot)
				}
			}
		}
		results = append(results, result)

		if err := r.persist(suitePath, suite, scriptPath, script, stepsByTest); err != nil {
			return results, fmt.Errorf("persist progress after test %s: %w", test.Name, err)
		}

		if runErr != nil {
			break // a failure stops subsequent tests in the suite
		}
	}

	return results, nil
}

// staticOutcome carries the one StaticRunner report for a suite's script,
// consumed at most once by the per-test loop: the first test named as a
// failure marks where the StaticRunner's report stops being trustworthy for
// tests after it (they shared the same process run and never got their own
// verdict), so runOneTest clears ran after handling it.
type staticOutcome struct {
	ran       bool
	failName  string
	failErr   string
	failStack string
}

// runStatic invokes the StaticRunner once per suite, ahead of the per-test
// loop, when there is a generated script to run and the caller didn't force
// full agentic re-derivation. A missing runner binary is a fatal,
// process-level error; any other failure to produce a parseable report
// (bad exit, no results file) just means the fast path below falls back to
// in-process replay for every test, so it's swallowed here.
func (r *Runner) runStatic(ctx context.Context, scriptPath, script, baseURL string, opts Options) (staticOutcome, error) {
	if opts.Agentic || script == "" || r.Cfg.StaticRunner.Command == "" {
		return staticOutcome{}, nil
	}

	sr := staticrun.New(r.Cfg.StaticRunner.Command, r.Cfg.StaticRunner.Args, r.Cfg.StaticRunner.Timeout())
	res, err := sr.Run(ctx, scriptPath, baseURL)
	if err != nil {
		if errors.Is(err, staticrun.ErrBinaryNotFound) {
			return staticOutcome{}, fmt.Errorf("static runner unavailable: %w", err)
		}
		return staticOutcome{}, nil
	}

	name, errMsg, stack, failed := res.FirstFailure()
	if !failed {
		return staticOutcome{ran: true}, nil
	}
	return staticOutcome{ran: true, failName: name, failErr: errMsg, failStack: stack}, nil
}

// runOneTest decides the fast path (trusting the suite-wide StaticRunner
// report, or failing that a static replay of the sidecar) versus the slow
// path (fresh agentic derivation), escalating a failure to the
// HealingOrchestrator unless opts.NoHeal or opts.Agentic says not to.
func (r *Runner) runOneTest(
	ctx context.Context, orchestrator *heal.Orchestrator, test model.Test,
	sc *model.SuiteSidecar, stepsByTest map[string][]model.RecordedStep, script *string,
	opts Options, maxSteps int, viewport agent.Viewport, so *staticOutcome,
) ([]model.RecordedStep, int, error) {
	existing := sc.TestByName(test.Name)

	if opts.Agentic || existing == nil || len(existing.Steps) == 0 {
		d := agent.New(r.AgenticClient, orchestrator.Exec, maxSteps, viewport)
		steps, err := d.Run(ctx, test)
		if err != nil {
			return steps, 0, fmt.Errorf("agentic derivation: %w", err)
		}
		return steps, 0, nil
	}

	if so.ran {
		if so.failName == "" || so.failName != test.Name {
			// The StaticRunner reported the whole suite passing, or named a
			// different test as the first failure — either way this test's
			// steps ran cleanly in that process.
			return existing.Steps, 0, nil
		}

		so.ran = false // the report doesn't cover what happens past this test
		failure := fmt.Errorf("%s\n%s", so.failErr, so.failStack)
		if opts.NoHeal {
			return existing.Steps, 0, fmt.Errorf("static run failed: %w", failure)
		}
		result, err := orchestrator.Heal(ctx, test, *script, existing.Steps, len(existing.Steps), failure)
		if err != nil {
			return existing.Steps, 0, fmt.Errorf("healing failed: %w", err)
		}
		if result.Script != "" {
			*script = result.Script
		}
		return result.Steps, result.Tier, nil
	}

	replayErr := replay.Run(orchestrator.Exec, existing.Steps)
	if replayErr == nil {
		return existing.Steps, 0, nil
	}

	if opts.NoHeal {
		return existing.Steps, 0, fmt.Errorf("static replay failed: %w", replayErr)
	}

	failIndex := len(existing.Steps)
	var fse *replay.FailedStepError
	if errorsAs(replayErr, &fse) {
		failIndex = fse.Index
	}

	result, err := orchestrator.Heal(ctx, test, *script, existing.Steps, failIndex, replayErr)
	if err != nil {
		return existing.Steps, 0, fmt.Errorf("healing failed: %w", err)
	}
	if result.Script != "" {
		*script = result.Script
	}
	return result.Steps, result.Tier, nil
}

// persist rebuilds the suite's generated script from stepsByTest and
// writes both the script and the sidecar, so progress survives even if a
// later test in the same run fails outright.
func (r *Runner) persist(suitePath string, suite *model.TestSuite, scriptPath, script string, stepsByTest map[string][]model.RecordedStep) error {
	built := builder.Build(suite, stepsByTest)
	if err := os.WriteFile(scriptPath, []byte(built.Script), 0644); err != nil {
		return fmt.Errorf("write script %s: %w", scriptPath, err)
	}

	sidecarPath := sidecar.Path(filepath.Dir(suitePath), suite.Name)
	if err := sidecar.Save(sidecarPath, built.Sidecar); err != nil {
		return fmt.Errorf("save sidecar: %w", err)
	}
	return nil
}

func countExecuted(steps []model.RecordedStep) int {
	n := 0
	for _, s := range steps {
		if s.Action.Type != model.ActionDone {
			n++
		}
	}
	return n
}

func tokenTotals(steps []model.RecordedStep) (input, output int) {
	for _, s := range steps {
		input += s.InputTokens
		output += s.OutputTokens
	}
	return input, output
}

// errorsAs is a local alias so this file only needs one import of
// "errors" worth of indirection; kept here rather than calling errors.As
// inline to keep the call sites above readable.
func errorsAs(err error, target **replay.FailedStepError) bool {
	for err != nil {
		if fse, ok := err.(*replay.FailedStepError); ok {
			*target = fse
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
