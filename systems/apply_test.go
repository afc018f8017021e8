package systems

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skirmish/components"
	"github.com/pthm-cable/skirmish/matching"
)

func TestApplyAssignsTargets(t *testing.T) {
	w := newTestWorld()
	s0 := w.spawn(components.Red, mgl32.Vec3{})
	s1 := w.spawn(components.Red, mgl32.Vec3{})
	s2 := w.spawn(components.Red, mgl32.Vec3{})
	c0 := w.spawn(components.Blue, mgl32.Vec3{})
	c1 := w.spawn(components.Blue, mgl32.Vec3{})

	sources := PositionBuffer{Handles: []ecs.Entity{s0, s1, s2}, Positions: make([]mgl32.Vec3, 3)}
	candidates := PositionBuffer{Handles: []ecs.Entity{c0, c1}, Positions: make([]mgl32.Vec3, 2)}

	n, err := NewApplySystem(w.world).Apply(&sources, []int32{1, matching.NoCandidate, 0}, &candidates)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if n != 2 {
		t.Errorf("assigned = %d, want 2", n)
	}

	if got := w.target(t, s0); !got.Enabled || got.Entity != c1 {
		t.Errorf("s0 target = %+v, want enabled %v", got, c1)
	}
	if got := w.target(t, s1); got.Enabled {
		t.Errorf("s1 target = %+v, want disabled", got)
	}
	if got := w.target(t, s2); !got.Enabled || got.Entity != c0 {
		t.Errorf("s2 target = %+v, want enabled %v", got, c0)
	}
}

func TestApplyRejectsBadInputWithoutWriting(t *testing.T) {
	w := newTestWorld()
	s0 := w.spawn(components.Red, mgl32.Vec3{})
	s1 := w.spawn(components.Red, mgl32.Vec3{})
	c0 := w.spawn(components.Blue, mgl32.Vec3{})

	sources := PositionBuffer{Handles: []ecs.Entity{s0, s1}, Positions: make([]mgl32.Vec3, 2)}
	candidates := PositionBuffer{Handles: []ecs.Entity{c0}, Positions: make([]mgl32.Vec3, 1)}

	tests := []struct {
		name       string
		sources    PositionBuffer
		results    []int32
		candidates PositionBuffer
	}{
		{"short results", sources, []int32{0}, candidates},
		{"long results", sources, []int32{0, 0, 0}, candidates},
		{"index past candidates", sources, []int32{0, 1}, candidates},
		{"negative index", sources, []int32{0, -2}, candidates},
		{"misaligned sources", PositionBuffer{Handles: sources.Handles, Positions: make([]mgl32.Vec3, 1)}, []int32{0, 0}, candidates},
		{"misaligned candidates", sources, []int32{0, 0}, PositionBuffer{Handles: candidates.Handles}},
	}

	apply := NewApplySystem(w.world)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := apply.Apply(&tt.sources, tt.results, &tt.candidates)
			if !errors.Is(err, matching.ErrInvalidBufferLength) {
				t.Fatalf("Apply error = %v, want ErrInvalidBufferLength", err)
			}
			if n != 0 {
				t.Errorf("assigned = %d, want 0", n)
			}
			for _, e := range []ecs.Entity{s0, s1} {
				if got := w.target(t, e); got.Enabled {
					t.Errorf("target of %v written despite error: %+v", e, got)
				}
			}
		})
	}
}

func TestApplyOverwritesExistingTarget(t *testing.T) {
	w := newTestWorld()
	s := w.spawn(components.Red, mgl32.Vec3{})
	old := w.spawn(components.Blue, mgl32.Vec3{})
	fresh := w.spawn(components.Blue, mgl32.Vec3{})
	w.aim(s, old)

	sources := PositionBuffer{Handles: []ecs.Entity{s}, Positions: make([]mgl32.Vec3, 1)}
	candidates := PositionBuffer{Handles: []ecs.Entity{old, fresh}, Positions: make([]mgl32.Vec3, 2)}

	if _, err := NewApplySystem(w.world).Apply(&sources, []int32{1}, &candidates); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := w.target(t, s); got.Entity != fresh {
		t.Errorf("target = %v, want %v", got.Entity, fresh)
	}
}
