// Package config defines the runtime's tunables and loads them from
// YAML. The zero value is not usable; start from Default and overlay
// a file with Load or Parse.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scope selects how component state slots are addressed.
type Scope string

const (
	// ScopePath keys state by the component's stable path, so two
	// instances of the same component have independent state. It is
	// the default and departs from the older name-keyed behavior,
	// which ScopeName keeps.
	ScopePath Scope = "path"
	// ScopeName keys state by the component function's name. All
	// mounted instances of a component share one set of slots.
	ScopeName Scope = "name"
)

// Config holds runtime settings.
type Config struct {
	// MountID is the id attribute of the container the root
	// component is rendered into.
	MountID string `yaml:"mount_id"`

	// IdentityAttr is the attribute each rendered element carries its
	// stable identity in.
	IdentityAttr string `yaml:"identity_attr"`

	// StateScope selects state slot addressing.
	StateScope Scope `yaml:"state_scope"`

	// MaxRerenders bounds the number of consecutive render passes a
	// single flush may perform before it gives up.
	MaxRerenders int `yaml:"max_rerenders"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		MountID:      "root",
		IdentityAttr: "data-vdom-id",
		StateScope:   ScopePath,
		MaxRerenders: 100,
		LogLevel:     "info",
	}
}

// Parse overlays YAML data on the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w (in %s)", err, path)
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.MountID == "":
		return fmt.Errorf("config: mount_id must not be empty")
	case c.IdentityAttr == "":
		return fmt.Errorf("config: identity_attr must not be empty")
	case c.StateScope != ScopePath && c.StateScope != ScopeName:
		return fmt.Errorf("config: state_scope %q: must be %q or %q", c.StateScope, ScopePath, ScopeName)
	case c.MaxRerenders < 1:
		return fmt.Errorf("config: max_rerenders must be positive, got %d", c.MaxRerenders)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns LogLevel as a slog.Level.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("config: log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
