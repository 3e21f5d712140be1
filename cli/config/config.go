// Package config handles YAML config file loading for the crawler CLI.
package config

import (
	"fmt"
	"time"
)

// Config represents an optional YAML config file. All values act as
// defaults for run flags; CLI flags always override config values.
type Config struct {
	URL          string   `yaml:"url"`
	Repositories []string `yaml:"repositories"`
	Username     string   `yaml:"username"`
	Password     string   `yaml:"password"`
	Workers      int      `yaml:"workers"`
	Timeout      Duration `yaml:"timeout"`
	RetryDelay   Duration `yaml:"retry_delay"`
	OutputDir    string   `yaml:"output_dir"`
	Verbose      bool     `yaml:"verbose"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "30s", "1m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "30s" or "1m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
