// Package config handles plvm.toml run configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents a plvm.toml file.
type Config struct {
	Engine Engine `toml:"engine"`
	Log    Log    `toml:"log"`
	Output Output `toml:"output"`
}

// Engine limits a script run.
type Engine struct {
	MaxSteps int    `toml:"max_steps"` // 0 => unlimited
	MaxDepth int    `toml:"max_depth"` // nested calls, 0 => engine default
	Timeout  string `toml:"timeout"`   // time.ParseDuration syntax, "" => none
}

// Log configures the default logger.
type Log struct {
	Verbose bool `toml:"verbose"`
	Color   bool `toml:"color"`
}

// Output configures files written after a run.
type Output struct {
	Snapshot string `toml:"snapshot"`
}

// Default returns the configuration used without a file
func Default() *Config {
	return &Config{
		Engine: Engine{MaxSteps: 1_000_000, MaxDepth: 4096},
		Log:    Log{Color: true},
	}
}

// Load parses the file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return Parse(string(data))
}

// Parse reads a configuration from TOML text on top of the defaults.
func Parse(text string) (*Config, error) {
	c := Default()
	if _, err := toml.Decode(text, c); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	if c.Engine.MaxSteps < 0 {
		return nil, fmt.Errorf("engine.max_steps must not be negative, got %d", c.Engine.MaxSteps)
	}
	if c.Engine.MaxDepth < 0 {
		return nil, fmt.Errorf("engine.max_depth must not be negative, got %d", c.Engine.MaxDepth)
	}
	if _, err := c.Timeout(); err != nil {
		return nil, err
	}
	return c, nil
}

// Timeout returns the run deadline, 0 when none is set
func (c *Config) Timeout() (time.Duration, error) {
	if c.Engine.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Engine.Timeout)
	if err != nil {
		return 0, fmt.Errorf("engine.timeout: %w", err)
	}
	return d, nil
}
