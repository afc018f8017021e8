package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/skirmish/config"
	"github.com/pthm-cable/skirmish/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, def[i], back[i])
		}
	}
}

func TestApplyToConfig(t *testing.T) {
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	pv := NewParamVector()

	// Out-of-range values are clamped before they reach the config.
	if err := pv.ApplyToConfig(cfg, []float64{100, 0, 0.5, 1.5}); err != nil {
		t.Fatalf("ApplyToConfig: %v", err)
	}
	if cfg.Warrior.Speed != 12 || cfg.Warrior.DestroyDistance != 0.3 {
		t.Errorf("warrior = %+v", cfg.Warrior)
	}
	if cfg.Derived.Speed32 != 12 {
		t.Errorf("derived speed not recomputed: %v", cfg.Derived.Speed32)
	}
	for _, sp := range cfg.Spawners {
		want := 0.5
		if sp.Faction == "blue" {
			want = 1.5
		}
		if sp.Delay != want {
			t.Errorf("%s spawner delay = %v, want %v", sp.Faction, sp.Delay, want)
		}
	}
}

func TestComputeQuality(t *testing.T) {
	tests := []struct {
		name    string
		windows []telemetry.WindowStats
		want    float64
	}{
		{"none", nil, 0},
		{"balanced", []telemetry.WindowStats{{RedCount: 10, BlueCount: 10}}, 1},
		{"one sided", []telemetry.WindowStats{{RedCount: 10, BlueCount: 0}}, 0},
		{"mixed", []telemetry.WindowStats{{RedCount: 10, BlueCount: 10}, {RedCount: 30, BlueCount: 10}}, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeQuality(tt.windows); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("computeQuality = %v, want %v", got, tt.want)
			}
		})
	}
}
