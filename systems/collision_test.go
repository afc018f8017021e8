package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skirmish/components"
)

func casualtySet(cs []Casualty) map[ecs.Entity]Cause {
	m := make(map[ecs.Entity]Cause, len(cs))
	for _, c := range cs {
		m[c.Entity] = c.Cause
	}
	return m
}

func TestCollisionDestroysPairs(t *testing.T) {
	w := newTestWorld()
	a := w.spawn(components.Red, mgl32.Vec3{0, 0, 0})
	b := w.spawn(components.Blue, mgl32.Vec3{0.5, 0, 0})
	far := w.spawn(components.Red, mgl32.Vec3{20, 0, 0})
	farTarget := w.spawn(components.Blue, mgl32.Vec3{-20, 0, 0})
	w.aim(a, b)
	w.aim(b, a)
	w.aim(far, farTarget)

	casualties, collisions := NewCollisionSystem(w.world).Update(1, 60)

	got := casualtySet(casualties)
	if len(casualties) != 2 || len(got) != 2 {
		t.Fatalf("casualties = %v, want a and b once each", casualties)
	}
	for _, e := range []ecs.Entity{a, b} {
		if cause, ok := got[e]; !ok || cause != CauseCollision {
			t.Errorf("entity %v: cause=%v ok=%v", e, cause, ok)
		}
	}
	if collisions != 1 {
		t.Errorf("collisions = %d, want 1", collisions)
	}
	if !w.world.Alive(a) {
		t.Error("collision system must not remove entities itself")
	}
}

func TestCollisionBoundary(t *testing.T) {
	tests := []struct {
		name string
		pos  mgl32.Vec3
		exit bool
	}{
		{"inside", mgl32.Vec3{9, -9, 9}, false},
		{"on edge", mgl32.Vec3{10, 0, -10}, false},
		{"past x", mgl32.Vec3{10.1, 0, 0}, true},
		{"past y", mgl32.Vec3{0, -10.1, 0}, true},
		{"past z", mgl32.Vec3{0, 0, 11}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld()
			e := w.spawn(components.Blue, tt.pos)

			casualties, _ := NewCollisionSystem(w.world).Update(1, 10)
			cause, ok := casualtySet(casualties)[e]
			if ok != tt.exit {
				t.Fatalf("exit = %v, want %v", ok, tt.exit)
			}
			if ok && cause != CauseBoundary {
				t.Errorf("cause = %v, want boundary", cause)
			}
		})
	}
}

func TestCollisionReusesBuffer(t *testing.T) {
	w := newTestWorld()
	a := w.spawn(components.Red, mgl32.Vec3{})
	b := w.spawn(components.Blue, mgl32.Vec3{})
	w.aim(a, b)

	c := NewCollisionSystem(w.world)
	first, _ := c.Update(1, 10)
	if len(first) != 2 {
		t.Fatalf("first pass: %d casualties", len(first))
	}
	for _, cs := range first {
		w.world.RemoveEntity(cs.Entity)
	}

	second, collisions := c.Update(1, 10)
	if len(second) != 0 || collisions != 0 {
		t.Errorf("second pass: %d casualties, %d collisions", len(second), collisions)
	}
}

func TestCollisionThresholdIsStrict(t *testing.T) {
	tests := []struct {
		name    string
		gap     float32
		collide bool
	}{
		{"inside", 0.99, true},
		{"exactly at distance", 1, false},
		{"outside", 1.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld()
			a := w.spawn(components.Red, mgl32.Vec3{0, 0, 0})
			b := w.spawn(components.Blue, mgl32.Vec3{tt.gap, 0, 0})
			w.aim(a, b)

			_, collisions := NewCollisionSystem(w.world).Update(1, 60)
			if got := collisions == 1; got != tt.collide {
				t.Errorf("gap %v: collisions = %d, want collide=%v", tt.gap, collisions, tt.collide)
			}
		})
	}
}
