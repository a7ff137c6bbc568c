package cliconfig

import (
	"os"
	"strings"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "APPSERVER_"

// envSettingPrefix marks environment variables that become settings:
// APPSERVER_SETTING_FOO=bar sets "foo" to "bar".
const envSettingPrefix = EnvPrefix + "SETTING_"

// ApplyEnvConfig applies configuration from environment variables (APPSERVER_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool, fromFlags map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("name", os.Getenv("APPSERVER_NAME"), &cfg.Name)
	s.setString("state-dir", os.Getenv("APPSERVER_STATE_DIR"), &cfg.StateDir)
	s.setString("log-level", os.Getenv("APPSERVER_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("APPSERVER_LOG_FORMAT"), &cfg.LogFormat)

	if err := s.setDuration("debounce", os.Getenv("APPSERVER_DEBOUNCE_DELAY"), &cfg.DebounceDelay); err != nil {
		return err
	}

	s.setBoolFromString("watch-config", os.Getenv("APPSERVER_WATCH_CONFIG"), &cfg.WatchConfig)
	s.setBoolFromString("once", os.Getenv("APPSERVER_ONCE"), &cfg.Once)

	s.mergeSettings(envSettings(os.Environ()), &cfg.Settings, fromFlags)
	return nil
}

// envSettings extracts APPSERVER_SETTING_* variables, lowercasing the key.
func envSettings(environ []string) map[string]string {
	settings := map[string]string{}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envSettingPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, envSettingPrefix))
		if name == "" {
			continue
		}
		settings[name] = value
	}
	return settings
}
