package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skirmish/components"
)

// MovementSystem walks every agent toward its enabled target.
type MovementSystem struct {
	world  *ecs.World
	filter *ecs.Filter2[components.Position, components.Target]
	posMap *ecs.Map1[components.Position]
}

// NewMovementSystem creates a movement system over world.
func NewMovementSystem(world *ecs.World) *MovementSystem {
	return &MovementSystem{
		world:  world,
		filter: ecs.NewFilter2[components.Position, components.Target](world),
		posMap: ecs.NewMap1[components.Position](world),
	}
}

// Update moves agents speed*dt along the direction to their target,
// stopping on the target rather than overshooting it.
// Agents without an enabled, living target stay put.
func (m *MovementSystem) Update(dt, speed float32) {
	step := dt * speed
	if step <= 0 {
		return
	}

	query := m.filter.Query()
	for query.Next() {
		pos, target := query.Get()
		if !target.Enabled || !m.world.Alive(target.Entity) {
			continue
		}

		from := pos.Vec()
		dir := m.posMap.Get(target.Entity).Vec().Sub(from)
		dist := dir.Len()
		if dist == 0 {
			continue
		}

		pos.Set(from.Add(dir.Mul(min(step, dist) / dist)))
	}
}
