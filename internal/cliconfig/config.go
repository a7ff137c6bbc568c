package cliconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/appserverkit/appserver/pkg/appserver"
	"github.com/appserverkit/appserver/pkg/log"
)

// Config holds CLI configuration for appserver.
type Config struct {
	Name     string
	StateDir string

	LogLevel  string
	LogFormat string

	WatchConfig   bool
	DebounceDelay time.Duration
	Once          bool

	Settings map[string]string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Name:          appserver.DefaultName,
		LogLevel:      "info",
		LogFormat:     log.FormatConsole,
		DebounceDelay: 100 * time.Millisecond,
		Settings:      map[string]string{},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case log.FormatConsole, log.FormatJSON:
	default:
		return fmt.Errorf("log format must be %q or %q", log.FormatConsole, log.FormatJSON)
	}
	if c.WatchConfig && c.DebounceDelay <= 0 {
		return fmt.Errorf("debounce delay must be positive")
	}
	return nil
}

// ServerConfig converts the CLI configuration to the server configuration.
func (c Config) ServerConfig() appserver.Config {
	settings := make(map[string]string, len(c.Settings))
	for k, v := range c.Settings {
		settings[k] = v
	}
	return appserver.Config{Name: c.Name, Settings: settings}
}

// ParseSetting splits a "key=value" flag argument.
func ParseSetting(arg string) (string, string, error) {
	key, value, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("setting %q must have the form key=value", arg)
	}
	return key, value, nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

// mergeSettings adds settings that were not given on the command line.
// Keys set with --set win over file and environment values.
func (s *configSetter) mergeSettings(values map[string]string, dst *map[string]string, fromFlags map[string]bool) {
	if len(values) == 0 {
		return
	}
	if *dst == nil {
		*dst = make(map[string]string, len(values))
	}
	for k, v := range values {
		if fromFlags[k] {
			continue
		}
		(*dst)[k] = v
	}
}
