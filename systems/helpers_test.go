package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skirmish/components"
)

type testWorld struct {
	world     *ecs.World
	mapper    *ecs.Map3[components.Position, components.Warrior, components.Target]
	posMap    *ecs.Map1[components.Position]
	targetMap *ecs.Map1[components.Target]
	nextID    uint32
}

func newTestWorld() *testWorld {
	world := ecs.NewWorld()
	return &testWorld{
		world:     world,
		mapper:    ecs.NewMap3[components.Position, components.Warrior, components.Target](world),
		posMap:    ecs.NewMap1[components.Position](world),
		targetMap: ecs.NewMap1[components.Target](world),
	}
}

func (w *testWorld) spawn(f components.Faction, p mgl32.Vec3) ecs.Entity {
	pos := components.PositionOf(p)
	warrior := components.Warrior{ID: w.nextID, Faction: f}
	target := components.Target{}
	w.nextID++
	return w.mapper.NewEntity(&pos, &warrior, &target)
}

func (w *testWorld) aim(e, at ecs.Entity) {
	t := w.targetMap.Get(e)
	t.Entity = at
	t.Enabled = true
}

func (w *testWorld) target(t *testing.T, e ecs.Entity) components.Target {
	t.Helper()
	if !w.world.Alive(e) {
		t.Fatalf("entity %v is not alive", e)
	}
	return *w.targetMap.Get(e)
}
