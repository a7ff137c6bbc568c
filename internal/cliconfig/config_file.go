package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config but uses strings for durations to make files friendly.
type FileConfig struct {
	Name          string            `toml:"name" yaml:"name"`
	StateDir      string            `toml:"state_dir" yaml:"state_dir"`
	LogLevel      string            `toml:"log_level" yaml:"log_level"`
	LogFormat     string            `toml:"log_format" yaml:"log_format"`
	WatchConfig   *bool             `toml:"watch_config" yaml:"watch_config"`
	DebounceDelay string            `toml:"debounce_delay" yaml:"debounce_delay"`
	Once          *bool             `toml:"once" yaml:"once"`
	Settings      map[string]string `toml:"settings" yaml:"settings"`
}

// LoadFileConfig reads and parses a config file. The format follows the
// extension: .yaml/.yml is YAML, anything else TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	default:
		err = toml.Unmarshal(b, &fc)
	}
	if err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// LoadSettings reads only the settings table of a config file. It is the
// loader used for live reloads.
func LoadSettings(path string) (map[string]string, error) {
	fc, err := LoadFileConfig(path)
	if err != nil {
		return nil, err
	}
	if fc.Settings == nil {
		return map[string]string{}, nil
	}
	return fc.Settings, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.appserver/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".appserver", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map); settings
// keys given with --set are listed in fromFlags.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool, fromFlags map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("name", fc.Name, &cfg.Name)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)

	if err := s.setDuration("debounce", fc.DebounceDelay, &cfg.DebounceDelay); err != nil {
		return err
	}

	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)
	s.setBool("once", fc.Once, &cfg.Once)

	s.mergeSettings(fc.Settings, &cfg.Settings, fromFlags)
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
