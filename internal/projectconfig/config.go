// Package projectconfig loads .estimator.yaml, the project-level
// configuration of the estimator CLI.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up by Load.
const FileName = ".estimator.yaml"

// maxWalkUp bounds how many parent directories Load searches.
const maxWalkUp = 10

// Default values. New() is the only place that applies them.
const (
	DefaultOutputDir   = "estimates/"
	DefaultSessionsDir = ".estimator/sessions"

	DefaultEngine  = "copilot-sdk"
	DefaultModel   = "gpt-4o"
	DefaultTimeout = 120

	DefaultMinDescription = 20
	DefaultMaxDescription = 1000
	DefaultMinActivities  = 3
	DefaultResetDelayMs   = 300

	DefaultCacheSize = 64
)

// Engines lists the accepted values of defaults.engine.
var Engines = []string{"copilot-sdk", "gemini", "mock"}

// PathsConfig holds output locations.
type PathsConfig struct {
	Output   string `yaml:"output,omitempty"`
	Sessions string `yaml:"sessions,omitempty"`
}

// DefaultsConfig holds generation defaults.
type DefaultsConfig struct {
	Engine string `yaml:"engine,omitempty"`
	Model  string `yaml:"model,omitempty"`
	// Timeout is the per-call generation timeout in seconds.
	Timeout    int   `yaml:"timeout,omitempty"`
	SessionLog *bool `yaml:"session_log,omitempty"`
}

// WizardConfig holds the interview limits.
type WizardConfig struct {
	MinDescription int `yaml:"min_description,omitempty"`
	MaxDescription int `yaml:"max_description,omitempty"`
	MinActivities  int `yaml:"min_activities,omitempty"`
	ResetDelayMs   int `yaml:"reset_delay_ms,omitempty"`
}

// CacheConfig controls the in-memory question cache.
type CacheConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
	Size    int   `yaml:"size,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .estimator.yaml.
type ProjectConfig struct {
	Paths    PathsConfig    `yaml:"paths,omitempty"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
	Wizard   WizardConfig   `yaml:"wizard,omitempty"`
	Cache    CacheConfig    `yaml:"cache,omitempty"`
}

// New returns a ProjectConfig with every default populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Output:   DefaultOutputDir,
			Sessions: DefaultSessionsDir,
		},
		Defaults: DefaultsConfig{
			Engine:     DefaultEngine,
			Model:      DefaultModel,
			Timeout:    DefaultTimeout,
			SessionLog: boolPtr(false),
		},
		Wizard: WizardConfig{
			MinDescription: DefaultMinDescription,
			MaxDescription: DefaultMaxDescription,
			MinActivities:  DefaultMinActivities,
			ResetDelayMs:   DefaultResetDelayMs,
		},
		Cache: CacheConfig{
			Enabled: boolPtr(true),
			Size:    DefaultCacheSize,
		},
	}
}

// Load finds .estimator.yaml by walking up from startDir, unmarshals it and
// overlays it on the defaults. A missing file yields the defaults; a file
// that cannot be read or parsed, or that fails Validate, is an error.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return cfg, nil
}

// Validate checks values that would make the wizard unusable.
func (c *ProjectConfig) Validate() error {
	var errs []error
	if !slices.Contains(Engines, c.Defaults.Engine) {
		errs = append(errs, fmt.Errorf("defaults.engine %q must be one of %v", c.Defaults.Engine, Engines))
	}
	if c.Defaults.Timeout < 0 {
		errs = append(errs, fmt.Errorf("defaults.timeout must not be negative, got %d", c.Defaults.Timeout))
	}
	if c.Wizard.MinDescription > c.Wizard.MaxDescription {
		errs = append(errs, fmt.Errorf("wizard.min_description %d exceeds wizard.max_description %d", c.Wizard.MinDescription, c.Wizard.MaxDescription))
	}
	if c.Wizard.ResetDelayMs < 0 {
		errs = append(errs, fmt.Errorf("wizard.reset_delay_ms must not be negative, got %d", c.Wizard.ResetDelayMs))
	}
	if c.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("cache.size must not be negative, got %d", c.Cache.Size))
	}
	return errors.Join(errs...)
}

// Timeout is the per-call generation timeout.
func (c *ProjectConfig) Timeout() time.Duration {
	return time.Duration(c.Defaults.Timeout) * time.Second
}

// ResetDelay is how long a closed wizard waits before discarding its session.
func (c *ProjectConfig) ResetDelay() time.Duration {
	return time.Duration(c.Wizard.ResetDelayMs) * time.Millisecond
}

// CacheSize is the number of question responses to keep, or 0 when caching is off.
func (c *ProjectConfig) CacheSize() int {
	if c.Cache.Enabled == nil || !*c.Cache.Enabled {
		return 0
	}
	return c.Cache.Size
}

// SessionLogEnabled reports whether wizard sessions are written to disk.
func (c *ProjectConfig) SessionLogEnabled() bool {
	return c.Defaults.SessionLog != nil && *c.Defaults.SessionLog
}

// findConfigFile walks up from dir looking for FileName. It returns
// os.ErrNotExist when no file is found and propagates any other I/O error.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range maxWalkUp {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays the values set in src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	setString(&dst.Paths.Output, src.Paths.Output)
	setString(&dst.Paths.Sessions, src.Paths.Sessions)

	setString(&dst.Defaults.Engine, src.Defaults.Engine)
	setString(&dst.Defaults.Model, src.Defaults.Model)
	setInt(&dst.Defaults.Timeout, src.Defaults.Timeout)
	if src.Defaults.SessionLog != nil {
		dst.Defaults.SessionLog = src.Defaults.SessionLog
	}

	setInt(&dst.Wizard.MinDescription, src.Wizard.MinDescription)
	setInt(&dst.Wizard.MaxDescription, src.Wizard.MaxDescription)
	setInt(&dst.Wizard.MinActivities, src.Wizard.MinActivities)
	setInt(&dst.Wizard.ResetDelayMs, src.Wizard.ResetDelayMs)

	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	setInt(&dst.Cache.Size, src.Cache.Size)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func boolPtr(b bool) *bool {
	return &b
}
