// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Physics    PhysicsConfig    `yaml:"physics"`
	Arena      ArenaConfig      `yaml:"arena"`
	Warrior    WarriorConfig    `yaml:"warrior"`
	Population PopulationConfig `yaml:"population"`
	Spawners   []SpawnerConfig  `yaml:"spawners"`
	Matching   MatchingConfig   `yaml:"matching"`
	Native     NativeConfig     `yaml:"native"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PhysicsConfig holds simulation timing parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"` // Seconds per tick for the headless runner
}

// ArenaConfig bounds the playing field.
// Agents further than HalfExtent from the origin on any axis are destroyed.
type ArenaConfig struct {
	HalfExtent float64 `yaml:"half_extent"`
}

// WarriorConfig holds per-agent movement and collision parameters.
type WarriorConfig struct {
	Speed           float64 `yaml:"speed"`            // Units per second toward the target
	DestroyDistance float64 `yaml:"destroy_distance"` // Both parties die when this close
	SpawnOffset     float64 `yaml:"spawn_offset"`     // Vertical offset above a spawner
}

// PopulationConfig holds initial population parameters.
type PopulationConfig struct {
	InitialPerFaction int `yaml:"initial_per_faction"`
}

// SpawnerConfig defines a periodic agent source.
type SpawnerConfig struct {
	Faction  string     `yaml:"faction"`  // "red" or "blue"
	Position [3]float64 `yaml:"position"` // World position of the spawner
	Delay    float64    `yaml:"delay"`    // Seconds between spawns
}

// MatchingConfig selects the nearest-target strategy.
type MatchingConfig struct {
	Strategy string `yaml:"strategy"`  // sequential, parallel, native
	TieBreak string `yaml:"tie_break"` // keep_first, overwrite_on_equal
	Workers  int    `yaml:"workers"`   // 0 = GOMAXPROCS
	Rematch  string `yaml:"rematch"`   // disabled_only, every_tick
}

// NativeConfig describes the optional native compute kernel.
type NativeConfig struct {
	Library  string `yaml:"library"`   // Path to the shared library
	TieBreak string `yaml:"tie_break"` // Comparison the kernel is built with
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// Strategy names accepted by matching.strategy.
const (
	StrategySequential = "sequential"
	StrategyParallel   = "parallel"
	StrategyNative     = "native"
)

// Tie-break names accepted by matching.tie_break and native.tie_break.
const (
	TieBreakKeepFirst        = "keep_first"
	TieBreakOverwriteOnEqual = "overwrite_on_equal"
)

// Rematch names accepted by matching.rematch.
const (
	RematchDisabledOnly = "disabled_only"
	RematchEveryTick    = "every_tick"
)

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32             float32 // Physics.DT as float32
	Speed32          float32 // Warrior.Speed as float32
	DestroyDistSq32  float32 // Warrior.DestroyDistance squared
	HalfExtent32     float32 // Arena.HalfExtent as float32
	SpawnOffset32    float32 // Warrior.SpawnOffset as float32
	RematchEveryTick bool    // Matching.Rematch == every_tick
	OverwriteOnEqual bool    // Matching.TieBreak == overwrite_on_equal
	NativeOverwrites bool    // Native.TieBreak == overwrite_on_equal
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
	cfg, err := Defaults()
	if err != nil {
		return nil, err
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
	cfg.computeDerived()

	return cfg, nil
}

// Defaults returns a fresh copy of the embedded defaults with derived values computed.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	switch c.Matching.Strategy {
	case StrategySequential, StrategyParallel, StrategyNative:
	default:
		return fmt.Errorf("matching.strategy: unknown strategy %q", c.Matching.Strategy)
	}
	if err := validTieBreak("matching.tie_break", c.Matching.TieBreak); err != nil {
		return err
	}
	if err := validTieBreak("native.tie_break", c.Native.TieBreak); err != nil {
		return err
	}
	switch c.Matching.Rematch {
	case RematchDisabledOnly, RematchEveryTick:
	default:
		return fmt.Errorf("matching.rematch: unknown mode %q", c.Matching.Rematch)
	}
	if c.Matching.Workers < 0 {
		return fmt.Errorf("matching.workers: must be >= 0, got %d", c.Matching.Workers)
	}
	if !(c.Physics.DT > 0) || math.IsInf(c.Physics.DT, 0) {
		return fmt.Errorf("physics.dt: must be positive, got %v", c.Physics.DT)
	}
	if c.Warrior.Speed < 0 || c.Warrior.DestroyDistance < 0 {
		return fmt.Errorf("warrior: speed and destroy_distance must be >= 0")
	}
	if c.Arena.HalfExtent <= 0 {
		return fmt.Errorf("arena.half_extent: must be positive, got %v", c.Arena.HalfExtent)
	}
	for i, sp := range c.Spawners {
		if sp.Faction != "red" && sp.Faction != "blue" {
			return fmt.Errorf("spawners[%d].faction: unknown faction %q", i, sp.Faction)
		}
		if sp.Delay <= 0 {
			return fmt.Errorf("spawners[%d].delay: must be positive, got %v", i, sp.Delay)
		}
	}
	return nil
}

// Resolve validates c and recomputes derived values after fields were
// changed in code.
func (c *Config) Resolve() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

func validTieBreak(field, v string) error {
	switch v {
	case TieBreakKeepFirst, TieBreakOverwriteOnEqual:
		return nil
	}
	return fmt.Errorf("%s: unknown tie-break %q", field, v)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.Speed32 = float32(c.Warrior.Speed)
	d := float32(c.Warrior.DestroyDistance)
	c.Derived.DestroyDistSq32 = d * d
	c.Derived.HalfExtent32 = float32(c.Arena.HalfExtent)
	c.Derived.SpawnOffset32 = float32(c.Warrior.SpawnOffset)
	c.Derived.RematchEveryTick = c.Matching.Rematch == RematchEveryTick
	c.Derived.OverwriteOnEqual = c.Matching.TieBreak == TieBreakOverwriteOnEqual
	c.Derived.NativeOverwrites = c.Native.TieBreak == TieBreakOverwriteOnEqual
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
