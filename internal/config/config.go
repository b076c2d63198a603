// Package config loads the walkersim YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full walkersim configuration.
type Config struct {
	TargetPopulation    int     `yaml:"target_population"`
	UseFixedSeed        bool    `yaml:"use_fixed_seed"`
	Seed                int64   `yaml:"seed"`
	MinimumWalkDistance float64 `yaml:"minimum_walk_distance"`

	TickIntervalMs int    `yaml:"tick_interval_ms"`
	APIPort        int    `yaml:"api_port"`
	DBPath         string `yaml:"db_path"`

	World WorldConfig `yaml:"world"`
}

// WorldConfig holds terrain generation and discovery parameters.
type WorldConfig struct {
	Size        int     `yaml:"size"`
	CellSpacing float64 `yaml:"cell_spacing"`
	Seed        int64   `yaml:"seed"`
	MinSpacing  float64 `yaml:"min_spacing"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		TargetPopulation:    50,
		UseFixedSeed:        false,
		Seed:                42,
		MinimumWalkDistance: 15.0,
		TickIntervalMs:      50,
		APIPort:             8080,
		DBPath:              "data/walkersim.db",
		World: WorldConfig{
			Size:        64,
			CellSpacing: 4.0,
			Seed:        7,
			MinSpacing:  10.0,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for out-of-range values.
func (c Config) Validate() error {
	if c.TargetPopulation < 0 {
		return fmt.Errorf("target_population must be >= 0, got %d", c.TargetPopulation)
	}
	if c.MinimumWalkDistance < 0 {
		return fmt.Errorf("minimum_walk_distance must be >= 0, got %g", c.MinimumWalkDistance)
	}
	if c.TickIntervalMs <= 0 {
		return fmt.Errorf("tick_interval_ms must be > 0, got %d", c.TickIntervalMs)
	}
	if c.World.Size < 2 {
		return fmt.Errorf("world.size must be >= 2, got %d", c.World.Size)
	}
	if c.World.CellSpacing <= 0 {
		return fmt.Errorf("world.cell_spacing must be > 0, got %g", c.World.CellSpacing)
	}
	return nil
}
