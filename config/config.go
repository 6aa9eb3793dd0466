// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Risk      RiskConfig      `yaml:"risk"`
	Food      FoodConfig      `yaml:"food"`
	SafePlace SafePlaceConfig `yaml:"safe_place"`
	Agent     AgentConfig     `yaml:"agent"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Run       RunConfig       `yaml:"run"`
}

// GridConfig holds world grid dimensions.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// RiskConfig holds risk field generation parameters.
type RiskConfig struct {
	Seed              int64   `yaml:"seed"`
	CorrelationLength float64 `yaml:"correlation_length"`
	Generator         string  `yaml:"generator"` // "spectral" or "simplex"
}

// FoodConfig holds food placement parameters.
type FoodConfig struct {
	Density       float64   `yaml:"density"`        // fraction of cells carrying food at setup
	EnergyYields  []float64 `yaml:"energy_yields"`  // sampled uniformly per item
	HandlingTimes []float64 `yaml:"handling_times"` // sampled uniformly per item
}

// SafePlaceConfig holds the storage site position. Negative values mean
// "use the grid center".
type SafePlaceConfig struct {
	Row int `yaml:"row"`
	Col int `yaml:"col"`
}

// AgentConfig holds forager parameters.
type AgentConfig struct {
	StartRow         int     `yaml:"start_row"` // -1 = one cell past the safe place
	StartCol         int     `yaml:"start_col"`
	InitialEnergy    float64 `yaml:"initial_energy"`
	MoveCost         float64 `yaml:"move_cost"` // energy per movement step
	RiskAversion     float64 `yaml:"risk_aversion"`
	PerceptionRadius int     `yaml:"perception_radius"`
	HandlingCostRate float64 `yaml:"handling_cost_rate"` // energy per unit handling time
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindowTicks int `yaml:"stats_window_ticks"`
}

// RunConfig holds run loop parameters.
type RunConfig struct {
	MaxTicks int `yaml:"max_ticks"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyDefaults()

	return cfg, nil
}

// applyDefaults fills fields the file may leave empty.
func (c *Config) applyDefaults() {
	if c.Risk.Generator == "" {
		c.Risk.Generator = "spectral"
	}
	if len(c.Food.EnergyYields) == 0 {
		c.Food.EnergyYields = []float64{2, 4, 8}
	}
	if len(c.Food.HandlingTimes) == 0 {
		c.Food.HandlingTimes = []float64{1, 2, 3}
	}
	if c.Telemetry.StatsWindowTicks <= 0 {
		c.Telemetry.StatsWindowTicks = 50
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
