package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/adrg/xdg"
)

const appName = "mindflat"

// Config represents the mindflat configuration
type Config struct {
	InputDir        string        `json:"input_dir"`
	OutputDir       string        `json:"output_dir"`
	LogFile         string        `json:"log_file"`
	StateFile       string        `json:"state_file"`
	Interval        time.Duration `json:"-"` // Stored as a duration string
	Workers         int           `json:"workers"`
	Format          string        `json:"format"`
	ExcludePatterns []string      `json:"exclude_patterns,omitempty"`
	Watch           bool          `json:"watch"`
}

// fileConfig is the on-disk shape of Config.
type fileConfig struct {
	InputDir        string   `json:"input_dir"`
	OutputDir       string   `json:"output_dir"`
	LogFile         string   `json:"log_file"`
	StateFile       string   `json:"state_file,omitempty"`
	Interval        string   `json:"interval"`
	Workers         int      `json:"workers,omitempty"`
	Format          string   `json:"format,omitempty"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty"`
	Watch           bool     `json:"watch,omitempty"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		InputDir:        filepath.Join(home, "mindnode"),
		OutputDir:       filepath.Join(home, "mindnode-flat"),
		LogFile:         filepath.Join(os.TempDir(), appName+".log"),
		StateFile:       StateFilePath(),
		Interval:        30 * time.Second,
		Workers:         runtime.NumCPU(),
		Format:          "json",
		ExcludePatterns: []string{},
	}
}

// ConfigPath returns the path to the config file.
// Uses ~/.config on all platforms for consistency.
// Can be overridden for testing.
var ConfigPath = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(xdg.ConfigHome, appName, "config.json")
	}
	return filepath.Join(home, ".config", appName, "config.json")
}

// StateFilePath returns the default state file location in the XDG data
// directory. Can be overridden for testing.
var StateFilePath = func() string {
	return filepath.Join(xdg.DataHome, appName, "state.json")
}

// Dir returns the directory holding the config file; the daemon keeps its
// PID file there too.
func Dir() string {
	return filepath.Dir(ConfigPath())
}

// Load reads configuration from the config directory. A missing file
// yields the defaults.
func Load() (*Config, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes, defaults, validates and expands a config file.
func Parse(data []byte) (*Config, error) {
	var raw fileConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	defaults := DefaultConfig()

	interval := defaults.Interval
	if raw.Interval != "" {
		var err error
		interval, err = time.ParseDuration(raw.Interval)
		if err != nil {
			return nil, fmt.Errorf("invalid interval format '%s': %w", raw.Interval, err)
		}
	}

	cfg := &Config{
		InputDir:        raw.InputDir,
		OutputDir:       raw.OutputDir,
		LogFile:         raw.LogFile,
		StateFile:       raw.StateFile,
		Interval:        interval,
		Workers:         raw.Workers,
		Format:          raw.Format,
		ExcludePatterns: raw.ExcludePatterns,
		Watch:           raw.Watch,
	}
	if cfg.StateFile == "" {
		cfg.StateFile = defaults.StateFile
	}
	if cfg.Workers == 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.Format == "" {
		cfg.Format = defaults.Format
	}
	if cfg.ExcludePatterns == nil {
		cfg.ExcludePatterns = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}
	return cfg, nil
}

// Save writes configuration to ConfigPath.
func (c *Config) Save() error {
	configPath := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	raw := fileConfig{
		InputDir:        c.InputDir,
		OutputDir:       c.OutputDir,
		LogFile:         c.LogFile,
		StateFile:       c.StateFile,
		Interval:        c.Interval.String(),
		Workers:         c.Workers,
		Format:          c.Format,
		ExcludePatterns: c.ExcludePatterns,
		Watch:           c.Watch,
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("input_dir cannot be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}
	if c.LogFile == "" {
		return fmt.Errorf("log_file cannot be empty")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}

	validFormats := map[string]bool{
		"json": true,
		"yaml": true,
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid format '%s': must be one of: json, yaml", c.Format)
	}

	for _, p := range c.ExcludePatterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", p, err)
		}
	}

	sameDir, err := samePath(c.InputDir, c.OutputDir)
	if err != nil {
		return err
	}
	if sameDir {
		return fmt.Errorf("output_dir must differ from input_dir")
	}
	return nil
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error

	c.InputDir, err = expandPath(c.InputDir)
	if err != nil {
		return fmt.Errorf("failed to expand input_dir: %w", err)
	}
	c.OutputDir, err = expandPath(c.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to expand output_dir: %w", err)
	}
	c.LogFile, err = expandPath(c.LogFile)
	if err != nil {
		return fmt.Errorf("failed to expand log_file: %w", err)
	}
	c.StateFile, err = expandPath(c.StateFile)
	if err != nil {
		return fmt.Errorf("failed to expand state_file: %w", err)
	}
	return nil
}

func samePath(a, b string) (bool, error) {
	ea, err := expandPath(a)
	if err != nil {
		return false, err
	}
	eb, err := expandPath(b)
	if err != nil {
		return false, err
	}
	return ea == eb, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	return filepath.Abs(path)
}
