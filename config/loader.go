package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/calderlane/modelseat/paths"
)

// Load reads and parses a seats file. Returns nil, nil if the file
// does not exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read seats config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse seats config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDefault loads seats.yaml from the resolved config directory.
// Returns an empty config if the file does not exist.
func LoadDefault() (*Config, error) {
	fp, err := paths.SeatsFilePath()
	if err != nil {
		return nil, err
	}

	cfg, err := Load(fp)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return &Config{Seats: map[string]*SeatConfig{}}, nil
	}
	return cfg, nil
}
