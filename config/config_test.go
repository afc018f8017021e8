package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("embedded defaults do not validate: %v", err)
	}
	if cfg.Matching.Strategy != StrategyParallel {
		t.Errorf("strategy = %q, want %q", cfg.Matching.Strategy, StrategyParallel)
	}
	if cfg.Matching.Rematch != RematchDisabledOnly {
		t.Errorf("rematch = %q, want %q", cfg.Matching.Rematch, RematchDisabledOnly)
	}
	if cfg.Derived.DestroyDistSq32 != float32(cfg.Warrior.DestroyDistance*cfg.Warrior.DestroyDistance) {
		t.Errorf("DestroyDistSq32 = %v", cfg.Derived.DestroyDistSq32)
	}
	if len(cfg.Spawners) != 4 {
		t.Errorf("spawners = %d, want 4", len(cfg.Spawners))
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"strategy", func(c *Config) { c.Matching.Strategy = "gpu" }, "matching.strategy"},
		{"tie break", func(c *Config) { c.Matching.TieBreak = "random" }, "matching.tie_break"},
		{"native tie break", func(c *Config) { c.Native.TieBreak = "" }, "native.tie_break"},
		{"rematch", func(c *Config) { c.Matching.Rematch = "never" }, "matching.rematch"},
		{"workers", func(c *Config) { c.Matching.Workers = -1 }, "matching.workers"},
		{"dt zero", func(c *Config) { c.Physics.DT = 0 }, "physics.dt"},
		{"speed", func(c *Config) { c.Warrior.Speed = -1 }, "warrior"},
		{"arena", func(c *Config) { c.Arena.HalfExtent = 0 }, "arena.half_extent"},
		{"spawner faction", func(c *Config) { c.Spawners[0].Faction = "green" }, "spawners[0].faction"},
		{"spawner delay", func(c *Config) { c.Spawners[1].Delay = 0 }, "spawners[1].delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Defaults()
			if err != nil {
				t.Fatalf("Defaults: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %q", err, tt.field)
			}
		})
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := "warrior:\n  speed: 9\nmatching:\n  strategy: sequential\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Warrior.Speed != 9 || cfg.Derived.Speed32 != 9 {
		t.Errorf("speed = %v / %v, want 9", cfg.Warrior.Speed, cfg.Derived.Speed32)
	}
	if cfg.Matching.Strategy != StrategySequential {
		t.Errorf("strategy = %q", cfg.Matching.Strategy)
	}
	// Untouched fields keep their defaults.
	if cfg.Warrior.DestroyDistance != 1.0 {
		t.Errorf("destroy_distance = %v, want default 1.0", cfg.Warrior.DestroyDistance)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("matching:\n  tie_break: sideways\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestResolve(t *testing.T) {
	cfg, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Matching.Rematch = RematchEveryTick
	cfg.Matching.TieBreak = TieBreakOverwriteOnEqual
	cfg.Arena.HalfExtent = 12
	if err := cfg.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !cfg.Derived.RematchEveryTick || !cfg.Derived.OverwriteOnEqual {
		t.Errorf("derived flags not recomputed: %+v", cfg.Derived)
	}
	if cfg.Derived.HalfExtent32 != 12 {
		t.Errorf("HalfExtent32 = %v, want 12", cfg.Derived.HalfExtent32)
	}

	cfg.Physics.DT = -1
	if err := cfg.Resolve(); err == nil {
		t.Error("Resolve accepted a negative dt")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Warrior.Speed = 7.5
	cfg.Spawners = cfg.Spawners[:1]

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Warrior.Speed != 7.5 {
		t.Errorf("speed = %v, want 7.5", got.Warrior.Speed)
	}
	if len(got.Spawners) != 1 {
		t.Errorf("spawners = %d, want 1", len(got.Spawners))
	}
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg did not panic before Init")
		}
	}()
	Cfg()
}
