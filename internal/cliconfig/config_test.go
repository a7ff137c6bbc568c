package cliconfig

import (
	"testing"
	"time"

	"github.com/appserverkit/appserver/pkg/appserver"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Name != appserver.DefaultName {
		t.Errorf("Name = %v, want %v", cfg.Name, appserver.DefaultName)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.DebounceDelay != 100*time.Millisecond {
		t.Errorf("DebounceDelay = %v, want 100ms", cfg.DebounceDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"json format", func(c *Config) { c.LogFormat = "json" }, false},
		{"empty name", func(c *Config) { c.Name = "  " }, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"watch without debounce", func(c *Config) {
			c.WatchConfig = true
			c.DebounceDelay = 0
		}, true},
		{"no watch, no debounce", func(c *Config) { c.DebounceDelay = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ServerConfig_CopiesSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = "edge"
	cfg.Settings["region"] = "eu"

	sc := cfg.ServerConfig()
	cfg.Settings["region"] = "us"

	if sc.Name != "edge" {
		t.Errorf("Name = %v, want edge", sc.Name)
	}
	if sc.Settings["region"] != "eu" {
		t.Errorf("Settings[region] = %v, want eu (copy)", sc.Settings["region"])
	}
}

func TestParseSetting(t *testing.T) {
	tests := []struct {
		arg       string
		wantKey   string
		wantValue string
		wantErr   bool
	}{
		{"region=eu", "region", "eu", false},
		{" region =eu", "region", "eu", false},
		{"empty=", "empty", "", false},
		{"url=http://x?a=b", "url", "http://x?a=b", false},
		{"novalue", "", "", true},
		{"=eu", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			key, value, err := ParseSetting(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSetting() error = %v, wantErr %v", err, tt.wantErr)
			}
			if key != tt.wantKey || value != tt.wantValue {
				t.Errorf("ParseSetting() = (%q, %q), want (%q, %q)", key, value, tt.wantKey, tt.wantValue)
			}
		})
	}
}

func TestConfigSetter_MergeSettings(t *testing.T) {
	s := newConfigSetter(nil)
	var dst map[string]string

	s.mergeSettings(map[string]string{"a": "file", "b": "file"}, &dst, map[string]bool{"b": true})

	if dst["a"] != "file" {
		t.Errorf("a = %q, want file", dst["a"])
	}
	if _, ok := dst["b"]; ok {
		t.Errorf("b was merged although set by flag")
	}
}
