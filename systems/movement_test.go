package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/skirmish/components"
)

func TestMovementUpdate(t *testing.T) {
	tests := []struct {
		name   string
		from   mgl32.Vec3
		to     mgl32.Vec3
		aim    bool
		remove bool
		dt     float32
		speed  float32
		want   mgl32.Vec3
	}{
		{"step toward target", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{10, 0, 0}, true, false, 0.5, 4, mgl32.Vec3{2, 0, 0}},
		{"diagonal", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{3, 0, 4}, true, false, 1, 1, mgl32.Vec3{0.6, 0, 0.8}},
		{"no overshoot", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, true, false, 1, 10, mgl32.Vec3{1, 0, 0}},
		{"coincident", mgl32.Vec3{5, 5, 5}, mgl32.Vec3{5, 5, 5}, true, false, 1, 1, mgl32.Vec3{5, 5, 5}},
		{"no target", mgl32.Vec3{1, 2, 3}, mgl32.Vec3{10, 0, 0}, false, false, 1, 1, mgl32.Vec3{1, 2, 3}},
		{"dead target", mgl32.Vec3{1, 2, 3}, mgl32.Vec3{10, 0, 0}, true, true, 1, 1, mgl32.Vec3{1, 2, 3}},
		{"zero dt", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{10, 0, 0}, true, false, 0, 4, mgl32.Vec3{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld()
			mover := w.spawn(components.Red, tt.from)
			target := w.spawn(components.Blue, tt.to)
			if tt.aim {
				w.aim(mover, target)
			}
			if tt.remove {
				w.world.RemoveEntity(target)
			}

			NewMovementSystem(w.world).Update(tt.dt, tt.speed)

			got := w.posMap.Get(mover).Vec()
			if !got.ApproxEqualThreshold(tt.want, 1e-5) {
				t.Errorf("position = %v, want %v", got, tt.want)
			}
		})
	}
}
