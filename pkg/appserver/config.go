package appserver

import (
	"fmt"
	"strings"
)

// DefaultName is used when Config.Name is empty.
const DefaultName = "appserver"

// Config holds the configuration of a Server.
type Config struct {
	// Name identifies the server in logs and status snapshots.
	Name string

	// Settings are initial free-form settings, stored as properties
	// and replaceable at runtime with ApplySettings.
	Settings map[string]string
}

// SetDefaults fills in empty fields.
func (c *Config) SetDefaults() {
	if strings.TrimSpace(c.Name) == "" {
		c.Name = DefaultName
	}
	c.Name = strings.TrimSpace(c.Name)
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if strings.ContainsAny(c.Name, " \t\r\n") {
		return fmt.Errorf("%w: name %q contains whitespace", ErrInvalidConfig, c.Name)
	}
	for name := range c.Settings {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty setting name", ErrInvalidConfig)
		}
	}
	return nil
}
