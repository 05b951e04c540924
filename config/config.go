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
	Sim       SimConfig       `yaml:"sim"`
	Terrain   TerrainConfig   `yaml:"terrain"`
	Trees     TreeConfig      `yaml:"trees"`
	Deer      AnimalConfig    `yaml:"deer"`
	Wolves    AnimalConfig    `yaml:"wolves"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SimConfig holds world-level parameters.
type SimConfig struct {
	Seed            int64   `yaml:"seed"`             // RNG seed for reproducible runs
	GridSize        int     `yaml:"grid_size"`        // Cells per axis for spatial index and terrain
	Scale           float64 `yaml:"scale"`            // Multiplier on all interaction radii and step sizes
	InitialTrees    int     `yaml:"initial_trees"`
	InitialDeer     int     `yaml:"initial_deer"`
	InitialWolves   int     `yaml:"initial_wolves"`
	MutationEnabled bool    `yaml:"mutation_enabled"` // Offspring traits perturbed vs exact clones
	MutationDelta   float64 `yaml:"mutation_delta"`   // Max perturbation as fraction of a trait's bound span
	ExtinctionFloor bool    `yaml:"extinction_floor"` // Last individual of a mobile species never dies
}

// TerrainConfig holds moisture field generation parameters.
type TerrainConfig struct {
	Mode       string      `yaml:"mode"`        // "sine" (deterministic basis sum) or "noise" (opensimplex)
	Basis      []SineBasis `yaml:"basis"`       // Sinusoidal basis functions for sine mode
	NoiseSeed  int64       `yaml:"noise_seed"`  // Seed for noise mode
	NoiseScale float64     `yaml:"noise_scale"` // Noise frequency for noise mode
}

// SineBasis describes one sinusoidal component of the moisture field.
type SineBasis struct {
	Frequency float64 `yaml:"frequency"` // Cycles across the unit square
	Axis      string  `yaml:"axis"`      // "x", "y", or "xy" (diagonal)
	Phase     float64 `yaml:"phase"`     // Radians
}

// Bounds is an inclusive [Min, Max] range for one trait.
type Bounds struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Clamp returns v limited to the bounds.
func (b Bounds) Clamp(v float64) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Span returns the width of the bounds.
func (b Bounds) Span() float64 {
	return b.Max - b.Min
}

// Norm maps v into [0,1] relative to the bounds. Degenerate bounds map to 0.
func (b Bounds) Norm(v float64) float64 {
	span := b.Span()
	if span <= 0 {
		return 0
	}
	n := (v - b.Min) / span
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// TreeBounds is the bound table for tree traits.
type TreeBounds struct {
	MaxSize                Bounds `yaml:"max_size"`
	AgeToSpread            Bounds `yaml:"age_to_spread"`
	SpreadDistance         Bounds `yaml:"spread_distance"`
	DeathChance            Bounds `yaml:"death_chance"`
	SpreadChance           Bounds `yaml:"spread_chance"`
	OptimalMoisture        Bounds `yaml:"optimal_moisture"`
	CrowdingSusceptibility Bounds `yaml:"crowding_susceptibility"`
}

// AnimalBounds is the bound table for mobile-species traits.
// MaxEatableSize applies to deer, HuntRadius to wolves; the unused slot
// stays zero for the other species.
type AnimalBounds struct {
	MaxSize                Bounds `yaml:"max_size"`
	Speed                  Bounds `yaml:"speed"`
	DeathChance            Bounds `yaml:"death_chance"`
	ReproduceChance        Bounds `yaml:"reproduce_chance"`
	CrowdingSusceptibility Bounds `yaml:"crowding_susceptibility"`
	EnergyNeeds            Bounds `yaml:"energy_needs"`
	MaxEatableSize         Bounds `yaml:"max_eatable_size"`
	HuntRadius             Bounds `yaml:"hunt_radius"`
}

// TreeConfig holds tree lifecycle parameters.
type TreeConfig struct {
	Bounds TreeBounds `yaml:"bounds"`

	GrowthRate   float64 `yaml:"growth_rate"`   // Size gained per tick at ideal conditions
	FitnessFloor float64 `yaml:"fitness_floor"` // Minimum moisture fitness; keeps growth from stalling

	// Crowding bands: normalized susceptibility maps linearly into
	// [min, max]. Growth reduction and death multiplier are never zero and
	// never total.
	CrowdingEffectMin float64 `yaml:"crowding_effect_min"`
	CrowdingEffectMax float64 `yaml:"crowding_effect_max"`
	CrowdingDeathBase float64 `yaml:"crowding_death_base"` // Base probability scaled by density
	CrowdingDeathMin  float64 `yaml:"crowding_death_min"`
	CrowdingDeathMax  float64 `yaml:"crowding_death_max"`
}

// AnimalConfig holds lifecycle parameters for one mobile species.
type AnimalConfig struct {
	Bounds AnimalBounds `yaml:"bounds"`

	MaxEnergy     float64 `yaml:"max_energy"`
	InitialEnergy float64 `yaml:"initial_energy"`
	EnergyPerSize float64 `yaml:"energy_per_size"` // Energy gained per unit of consumed size

	ForageRadius  float64 `yaml:"forage_radius"`  // Deer: food search range
	EatRadius     float64 `yaml:"eat_radius"`     // Deer: consumption range
	FleeRadius    float64 `yaml:"flee_radius"`    // Deer: predator sensing range
	KillRadius    float64 `yaml:"kill_radius"`    // Wolves: kill resolution range
	HuntSuccess   float64 `yaml:"hunt_success"`   // Wolves: base kill probability
	EvasionWeight float64 `yaml:"evasion_weight"` // Wolves: how strongly prey speed reduces kills

	CrowdingRadius  float64 `yaml:"crowding_radius"`
	CrowdingPenalty float64 `yaml:"crowding_penalty"` // Death probability per neighbor at max susceptibility

	StarvationThreshold float64 `yaml:"starvation_threshold"` // Energy below this adds a death penalty
	StarvationPenalty   float64 `yaml:"starvation_penalty"`   // Penalty at zero energy, scales with deficit

	ReproduceThreshold float64 `yaml:"reproduce_threshold"` // Energy gate; doubles as the hunger line
	MaturityAge        int32   `yaml:"maturity_age"`        // Minimum age in ticks
	BirthCost          float64 `yaml:"birth_cost"`          // Energy deducted from the parent
	BirthEnergy        float64 `yaml:"birth_energy"`        // Starting energy of offspring
	BirthOffset        float64 `yaml:"birth_offset"`        // Max offspring displacement per axis
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	WindowTicks int32 `yaml:"window_ticks"` // Ticks per stats window
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: invalid embedded defaults: %v", err))
	}
	return cfg
}

// Validate checks structural constraints the simulation relies on.
func (c *Config) Validate() error {
	if c.Sim.GridSize <= 0 {
		return fmt.Errorf("config: grid_size must be positive, got %d", c.Sim.GridSize)
	}
	if c.Sim.Scale <= 0 {
		return fmt.Errorf("config: scale must be positive, got %g", c.Sim.Scale)
	}
	switch c.Terrain.Mode {
	case "sine":
		if len(c.Terrain.Basis) == 0 {
			return fmt.Errorf("config: terrain mode %q needs at least one basis function", c.Terrain.Mode)
		}
	case "noise":
	default:
		return fmt.Errorf("config: unknown terrain mode %q", c.Terrain.Mode)
	}
	for _, bt := range []struct {
		name string
		b    Bounds
	}{
		{"trees.max_size", c.Trees.Bounds.MaxSize},
		{"trees.age_to_spread", c.Trees.Bounds.AgeToSpread},
		{"trees.spread_distance", c.Trees.Bounds.SpreadDistance},
		{"trees.death_chance", c.Trees.Bounds.DeathChance},
		{"trees.spread_chance", c.Trees.Bounds.SpreadChance},
		{"trees.optimal_moisture", c.Trees.Bounds.OptimalMoisture},
		{"trees.crowding_susceptibility", c.Trees.Bounds.CrowdingSusceptibility},
		{"deer.max_size", c.Deer.Bounds.MaxSize},
		{"deer.speed", c.Deer.Bounds.Speed},
		{"deer.death_chance", c.Deer.Bounds.DeathChance},
		{"deer.reproduce_chance", c.Deer.Bounds.ReproduceChance},
		{"deer.energy_needs", c.Deer.Bounds.EnergyNeeds},
		{"deer.max_eatable_size", c.Deer.Bounds.MaxEatableSize},
		{"wolves.max_size", c.Wolves.Bounds.MaxSize},
		{"wolves.speed", c.Wolves.Bounds.Speed},
		{"wolves.death_chance", c.Wolves.Bounds.DeathChance},
		{"wolves.reproduce_chance", c.Wolves.Bounds.ReproduceChance},
		{"wolves.energy_needs", c.Wolves.Bounds.EnergyNeeds},
		{"wolves.hunt_radius", c.Wolves.Bounds.HuntRadius},
	} {
		if bt.b.Min > bt.b.Max {
			return fmt.Errorf("config: bounds %s inverted: min %g > max %g", bt.name, bt.b.Min, bt.b.Max)
		}
	}
	return nil
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
