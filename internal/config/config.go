package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for zipcrack.
type FileConfig struct {
	Archive   *string `yaml:"archive,omitempty"`
	Output    *string `yaml:"output,omitempty"`
	Alphabet  *string `yaml:"alphabet,omitempty"`
	MinLength *int    `yaml:"min_length,omitempty"`
	MaxLength *int    `yaml:"max_length,omitempty"`
	// Members is a comma-separated list of globs limiting extraction.
	Members  *string `yaml:"members,omitempty"`
	NoColor  *bool   `yaml:"no_color,omitempty"`
	LogLevel *string `yaml:"log_level,omitempty"`
	LogJSON  *bool   `yaml:"log_json,omitempty"`

	History *HistoryConfig `yaml:"history,omitempty"`
}

// HistoryConfig controls the run history log.
type HistoryConfig struct {
	// Enabled turns on recording runs. Defaults to false.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Path overrides the history file location. If empty, the file lives
	// under $XDG_STATE_HOME/zipcrack.
	Path *string `yaml:"path,omitempty"`
}

// LocalNames are the repo-local config file names, in search order.
var LocalNames = []string{".zipcrack.yml", ".zipcrack.yaml", "zipcrack.yml", "zipcrack.yaml"}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a local config file in the given directory.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range LocalNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(base, "zipcrack", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// WriteFile marshals cfg as YAML to path, refusing to overwrite unless force is set.
func WriteFile(path string, cfg FileConfig, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(path + " already exists (use --force to overwrite)")
		}
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// GetHistoryConfig returns the history configuration with defaults applied.
func (fc FileConfig) GetHistoryConfig() HistoryConfig {
	if fc.History == nil {
		return HistoryConfig{}
	}
	return *fc.History
}

// IsEnabled reports whether runs are recorded (default: false).
func (hc HistoryConfig) IsEnabled() bool {
	if hc.Enabled == nil {
		return false
	}
	return *hc.Enabled
}

// GetPath returns the configured history path or empty string.
func (hc HistoryConfig) GetPath() string {
	if hc.Path == nil {
		return ""
	}
	return *hc.Path
}

// MergeHistory overlays local history settings on global ones field by field.
func MergeHistory(local, global HistoryConfig) HistoryConfig {
	out := global
	if local.Enabled != nil {
		out.Enabled = local.Enabled
	}
	if local.Path != nil {
		out.Path = local.Path
	}
	return out
}
