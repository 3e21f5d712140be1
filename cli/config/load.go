package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the crawler's YAML config file, expands environment
// variables in it, and unmarshals the result. The returned values act as
// defaults for run flags; flags set on the command line always win.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("crawler config not found: %s", path)
		}
		return nil, fmt.Errorf("read crawler config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse crawler config %s: %w", path, err)
	}

	return &cfg, nil
}
