// Package zconfig loads and validates zentest.yaml, following the same
// shape as pkg/config: a typed Config, DefaultConfig(), Load(path) that
// searches upward when no path is given, os.ExpandEnv string expansion,
// and a Validate pass.
package zconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level zentest.yaml shape.
type Config struct {
	BaseURL      string                      `yaml:"baseUrl"`
	Environments map[string]EnvironmentConfig `yaml:"environments"`
	Provider     string                      `yaml:"provider"` // anthropic, openai, openrouter
	Models       ModelsConfig                `yaml:"models"`
	MaxSteps     int                         `yaml:"maxSteps"`
	Viewport     ViewportConfig              `yaml:"viewport"`
	Headless     bool                        `yaml:"headless"`
	APIKey       string                      `yaml:"apiKey"` // fallback key for Provider; per-provider keys win if set
	TestsDir     string                      `yaml:"testsDir"`
	RunsDir      string                      `yaml:"runsDir"`
	StaticRunner StaticRunnerConfig          `yaml:"staticRunner"`
}

// StaticRunnerConfig names the external test-runner binary the
// StaticRunner launches as a child process to execute a suite's generated
// script (e.g. the Playwright CLI via npx). Command is resolved on PATH
// when it doesn't contain a path separator, same as the teacher's
// Executor.MaestroPath.
type StaticRunnerConfig struct {
	Command        string   `yaml:"command"`
	Args           []string `yaml:"args"`
	TimeoutSeconds int      `yaml:"timeoutSeconds"`
}

// EnvironmentConfig overrides BaseURL (and nothing else) per named
// environment, selected with `zentest run --env NAME`.
type EnvironmentConfig struct {
	BaseURL string `yaml:"baseUrl"`
}

// ModelsConfig names which model identifier backs each of the three roles
// a call can play (provider.Role).
type ModelsConfig struct {
	AgenticModel string `yaml:"agenticModel"`
	BuilderModel string `yaml:"builderModel"`
	HealerModel  string `yaml:"healerModel"`
}

// ViewportConfig is the browser window size BrowserExecutor launches with.
type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DefaultConfig returns the config used when no zentest.yaml is found.
func DefaultConfig() *Config {
	return &Config{
		Provider: "anthropic",
		Models: ModelsConfig{
			AgenticModel: "claude-sonnet-4-5",
			BuilderModel: "claude-sonnet-4-5",
			HealerModel:  "claude-sonnet-4-5",
		},
		MaxSteps: 40,
		Viewport: ViewportConfig{Width: 1280, Height: 720},
		Headless: true,
		TestsDir: "./tests",
		RunsDir:  "./runs",
		StaticRunner: StaticRunnerConfig{
			Command:        "npx",
			Args:           []string{"playwright", "test"},
			TimeoutSeconds: 300,
		},
	}
}

// Load reads and parses path, or searches the working directory and its
// parents for zentest.yaml/zentest.yml when path is empty. A missing file
// is not an error — callers get DefaultConfig(). Environment variables are
// expanded, then ZENTEST_* variables override matching fields, then the
// result is validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findConfigFile()
		if path == "" {
			applyEnv(cfg)
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.expandEnvVars()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Validate rejects a config the rest of the program couldn't act on.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	validProviders := map[string]bool{"anthropic": true, "openai": true, "openrouter": true}
	if !validProviders[c.Provider] {
		return fmt.Errorf("provider must be anthropic, openai, or openrouter")
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("maxSteps must be positive")
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport.width and viewport.height must be positive")
	}
	if c.StaticRunner.Command == "" {
		return fmt.Errorf("staticRunner.command is required")
	}
	return nil
}

// APIKeyForProvider returns the provider-specific ZENTEST_*_API_KEY
// environment variable for provider, falling back to Config.APIKey when
// that variable isn't set.
func (c *Config) APIKeyForProvider(provider string) string {
	var envVar string
	switch provider {
	case "anthropic":
		envVar = "ZENTEST_ANTHROPIC_API_KEY"
	case "openai":
		envVar = "ZENTEST_OPENAI_API_KEY"
	case "openrouter":
		envVar = "ZENTEST_OPENROUTER_API_KEY"
	}
	if envVar != "" {
		if v := os.Getenv(envVar); v != "" {
			return v
		}
	}
	return c.APIKey
}

// ResolveBaseURL returns the BaseURL for env, or Config.BaseURL when env is
// empty or unknown.
func (c *Config) ResolveBaseURL(env string) string {
	if env == "" {
		return c.BaseURL
	}
	if e, ok := c.Environments[env]; ok && e.BaseURL != "" {
		return e.BaseURL
	}
	return c.BaseURL
}

func (c *Config) expandEnvVars() {
	c.BaseURL = os.ExpandEnv(c.BaseURL)
	c.APIKey = os.ExpandEnv(c.APIKey)
	c.TestsDir = os.ExpandEnv(c.TestsDir)
	c.RunsDir = os.ExpandEnv(c.RunsDir)
	for name, e := range c.Environments {
		e.BaseURL = os.ExpandEnv(e.BaseURL)
		c.Environments[name] = e
	}
}

// applyEnv lets ZENTEST_* environment variables override whatever the file
// (or defaults) set.
func applyEnv(c *Config) {
	if v := os.Getenv("ZENTEST_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("ZENTEST_AGENTIC_MODEL"); v != "" {
		c.Models.AgenticModel = v
	}
	if v := os.Getenv("ZENTEST_BUILDER_MODEL"); v != "" {
		c.Models.BuilderModel = v
	}
	if v := os.Getenv("ZENTEST_HEALER_MODEL"); v != "" {
		c.Models.HealerModel = v
	}
	if v := os.Getenv("ZENTEST_VIEWPORT_WIDTH"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			c.Viewport.Width = n
		}
	}
	if v := os.Getenv("ZENTEST_VIEWPORT_HEIGHT"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			c.Viewport.Height = n
		}
	}
	if v := os.Getenv("ZENTEST_HEADLESS"); v != "" {
		c.Headless = v == "true" || v == "1"
	}
	if v := os.Getenv("ZENTEST_MAX_STEPS"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			c.MaxSteps = n
		}
	}
	if v := os.Getenv("ZENTEST_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("ZENTEST_STATIC_RUNNER_COMMAND"); v != "" {
		c.StaticRunner.Command = v
	}
}

// Timeout returns the static runner's configured timeout as a
// time.Duration, defaulting to 300s when unset or non-positive.
func (c *StaticRunnerConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 300 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not a number: %q", s)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

// findConfigFile searches the working directory and up to 5 parents for
// zentest.yaml or zentest.yml.
func findConfigFile() string {
	candidates := []string{"zentest.yaml", "zentest.yml"}

	for _, name := range candidates {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
		for _, name := range candidates {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}
