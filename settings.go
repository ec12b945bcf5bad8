package plotscript

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the on-disk YAML configuration consumed by the CLI and the
// batch runner. Unset fields fall back to defaults when converted to a
// Config.
type Settings struct {
	Debug            bool          `yaml:"debug"`
	DebugCategories  []string      `yaml:"debug_categories"`
	TimeoutMs        int           `yaml:"timeout_ms"`
	CacheSize        int           `yaml:"cache_size"`
	ShowErrorContext *bool         `yaml:"show_error_context"`
	ContextLines     int           `yaml:"context_lines"`
	Batch            BatchSettings `yaml:"batch"`
}

// BatchSettings tunes the batch runner.
type BatchSettings struct {
	Workers    int     `yaml:"workers"`      // concurrent jobs, default 4
	RatePerSec float64 `yaml:"rate_per_sec"` // job start rate limit, 0 = unlimited
}

const defaultSettingsContent = `# PlotScript settings
#
# debug: false
# debug_categories: [parse, expr, command]
# timeout_ms: 3000
# cache_size: 64
# show_error_context: true
# context_lines: 2
# batch:
#   workers: 4
#   rate_per_sec: 0
`

// DefaultSettingsPath returns the per-user settings file location.
func DefaultSettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".plotscript.yaml"), nil
}

// LoadSettings reads a YAML settings file. A missing file is not an
// error; it yields empty settings, which convert to defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return &s, nil
}

// WriteDefaultSettings creates a commented template settings file if none
// exists yet. An existing file is left alone.
func WriteDefaultSettings(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(defaultSettingsContent), 0o644); err != nil {
		return fmt.Errorf("creating settings %s: %w", path, err)
	}
	return nil
}

// Config converts the settings into an interpreter Config, applying
// defaults for anything unset.
func (s *Settings) Config() *Config {
	config := DefaultConfig()
	config.Debug = s.Debug
	config.DebugCategories = s.DebugCategories
	if s.TimeoutMs > 0 {
		config.Timeout = time.Duration(s.TimeoutMs) * time.Millisecond
	}
	if s.CacheSize > 0 {
		config.CacheSize = s.CacheSize
	}
	if s.ShowErrorContext != nil {
		config.ShowErrorContext = *s.ShowErrorContext
	}
	if s.ContextLines > 0 {
		config.ContextLines = s.ContextLines
	}
	return config
}
