// Package config loads amanignore configuration.
//
// Settings are layered in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config ($XDG_CONFIG_HOME/amanignore/config.yaml)
//  3. Project config (.amanignore.yaml or .amanignore.yml in the project root)
//  4. Environment variables (AMANIGNORE_*), then the project .env file
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ierrors "github.com/Aman-CERP/amanignore/internal/errors"
	"github.com/Aman-CERP/amanignore/internal/gitignore"
)

// CurrentVersion is the configuration schema version.
const CurrentVersion = 1

// Config represents the complete amanignore configuration.
type Config struct {
	Version  int           `yaml:"version" json:"version"`
	Rules    RulesConfig   `yaml:"rules" json:"rules"`
	Matcher  MatcherConfig `yaml:"matcher" json:"matcher"`
	Cache    CacheConfig   `yaml:"cache" json:"cache"`
	Scan     ScanConfig    `yaml:"scan" json:"scan"`
	Watch    WatchConfig   `yaml:"watch" json:"watch"`
	LogLevel string        `yaml:"log_level" json:"log_level"`
}

// RulesConfig selects the ignore file.
type RulesConfig struct {
	// File is the ignore file, relative to the project root unless absolute.
	File string `yaml:"file" json:"file"`
	// Extra patterns are compiled after the file's own lines.
	Extra []string `yaml:"extra" json:"extra"`
}

// MatcherConfig maps onto gitignore.Options.
type MatcherConfig struct {
	ShortCircuitParents bool `yaml:"short_circuit_parents" json:"short_circuit_parents"`
	CaseInsensitive     bool `yaml:"case_insensitive" json:"case_insensitive"`
	// MaxBacktrack of -1 disables the budget.
	MaxBacktrack int `yaml:"max_backtrack" json:"max_backtrack"`
}

// CacheConfig configures the verdict cache.
type CacheConfig struct {
	// Size is the number of cached verdicts. 0 disables the cache.
	Size int `yaml:"size" json:"size"`
}

// ScanConfig configures tree scans.
type ScanConfig struct {
	Workers int `yaml:"workers" json:"workers"`
	// Include restricts reported paths to these doublestar globs.
	Include []string `yaml:"include" json:"include"`
	// SkipIgnoredDirs stops the walk at ignored directories.
	SkipIgnoredDirs bool `yaml:"skip_ignored_dirs" json:"skip_ignored_dirs"`
}

// WatchConfig configures the rule file watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce" json:"debounce"`
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Rules: RulesConfig{
			File: ".gitignore",
		},
		Matcher: MatcherConfig{
			MaxBacktrack: gitignore.DefaultMaxBacktrack,
		},
		Cache: CacheConfig{
			Size: gitignore.DefaultCacheSize,
		},
		Scan: ScanConfig{
			Workers: runtime.NumCPU(),
		},
		Watch: WatchConfig{
			Debounce: "200ms",
		},
		LogLevel: "info",
	}
}

// GetUserConfigPath returns the user configuration file:
//   - $XDG_CONFIG_HOME/amanignore/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/amanignore/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "amanignore", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "amanignore", "config.yaml")
	}
	return filepath.Join(home, ".config", "amanignore", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// ProjectConfigPath returns the project config file in dir, preferring
// .amanignore.yaml over .amanignore.yml. It returns "" when neither exists.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{".amanignore.yaml", ".amanignore.yml"} {
		if p := filepath.Join(dir, name); fileExists(p) {
			return p
		}
	}
	return ""
}

// Load loads configuration for the project rooted at dir.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.LoadYAML(path); err != nil {
			return nil, err
		}
	}

	if path := ProjectConfigPath(dir); path != "" {
		if err := cfg.LoadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides(projectEnv(dir))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUserConfig loads the user config over defaults.
// It returns nil and no error when the file does not exist.
func LoadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}
	cfg := NewConfig()
	if err := cfg.LoadYAML(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadYAML decodes path over c. Keys absent from the file keep their
// current values, so explicit zero values (e.g. cache.size: 0) are honored.
func (c *Config) LoadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return ierrors.New(ierrors.ErrCodeConfigPermission, "cannot read config file", err).
				WithDetail("path", path)
		}
		return ierrors.ConfigError("failed to read config file", err).WithDetail("path", path)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return ierrors.ConfigError("failed to parse config file", err).
			WithDetail("path", path).
			WithSuggestion("Check the YAML syntax; 'amanignore config show --source defaults' prints a valid example")
	}
	return nil
}

// DotEnvFile is read from the project root. Its AMANIGNORE_* entries apply
// when the process environment does not set the same key.
const DotEnvFile = ".env"

// projectEnv returns a lookup over the process environment backed by the
// project's .env file. A missing or unreadable .env is skipped.
func projectEnv(dir string) func(string) string {
	dotenv, err := godotenv.Read(filepath.Join(dir, DotEnvFile))
	if err != nil {
		dotenv = nil
	}
	return func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
}

// applyEnvOverrides applies AMANIGNORE_* variables read through getenv.
// Unparseable values are ignored.
func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if v := getenv("AMANIGNORE_RULES_FILE"); v != "" {
		c.Rules.File = v
	}
	if v, ok := parseBool(getenv("AMANIGNORE_SHORT_CIRCUIT")); ok {
		c.Matcher.ShortCircuitParents = v
	}
	if v, ok := parseBool(getenv("AMANIGNORE_CASE_INSENSITIVE")); ok {
		c.Matcher.CaseInsensitive = v
	}
	if v := getenv("AMANIGNORE_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Cache.Size = n
		}
	}
	if v := getenv("AMANIGNORE_SCAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Scan.Workers = n
		}
	}
	if v := getenv("AMANIGNORE_WATCH_DEBOUNCE"); v != "" {
		c.Watch.Debounce = v
	}
	if v := getenv("AMANIGNORE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func parseBool(v string) (bool, bool) {
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	invalid := func(field, format string, args ...any) error {
		return ierrors.New(ierrors.ErrCodeConfigInvalid, fmt.Sprintf(format, args...), nil).
			WithDetail("field", field)
	}

	if strings.TrimSpace(c.Rules.File) == "" {
		return invalid("rules.file", "rules.file must not be empty")
	}
	if c.Matcher.MaxBacktrack < -1 {
		return invalid("matcher.max_backtrack", "matcher.max_backtrack must be -1 (unlimited) or positive, got %d", c.Matcher.MaxBacktrack)
	}
	if c.Cache.Size < 0 {
		return invalid("cache.size", "cache.size must be non-negative, got %d", c.Cache.Size)
	}
	if c.Scan.Workers < 0 {
		return invalid("scan.workers", "scan.workers must be non-negative, got %d", c.Scan.Workers)
	}
	for _, g := range c.Scan.Include {
		if !doublestar.ValidatePattern(g) {
			return invalid("scan.include", "scan.include has an invalid glob: %q", g)
		}
	}
	if d, err := time.ParseDuration(c.Watch.Debounce); err != nil || d < 0 {
		return invalid("watch.debounce", "watch.debounce must be a non-negative duration, got %q", c.Watch.Debounce)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return invalid("log_level", "log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.LogLevel)
	}

	return nil
}

// MatcherOptions returns the evaluator options for this configuration.
func (c *Config) MatcherOptions() gitignore.Options {
	return gitignore.Options{
		ShortCircuitParents: c.Matcher.ShortCircuitParents,
		CaseInsensitive:     c.Matcher.CaseInsensitive,
		MaxBacktrack:        c.Matcher.MaxBacktrack,
	}
}

// RulesPath resolves the ignore file against the project root.
func (c *Config) RulesPath(root string) string {
	if filepath.IsAbs(c.Rules.File) {
		return c.Rules.File
	}
	return filepath.Join(root, c.Rules.File)
}

// DebounceDuration returns the parsed watch debounce. Call Validate first.
func (c *Config) DebounceDuration() time.Duration {
	d, _ := time.ParseDuration(c.Watch.Debounce)
	return d
}

// WriteYAML writes the configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// JSON returns the configuration as indented JSON.
func (c *Config) JSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// FindProjectRoot walks up from startDir looking for a .git directory or an
// .amanignore.yaml/.yml file. It returns startDir when neither is found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}

	for {
		if dirExists(filepath.Join(dir, ".git")) || ProjectConfigPath(dir) != "" {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return filepath.Abs(startDir)
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
