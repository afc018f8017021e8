package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skirmish/components"
	"github.com/pthm-cable/skirmish/matching"
)

// Cause records why an agent is removed.
type Cause uint8

const (
	CauseCollision Cause = iota
	CauseBoundary
)

// Casualty is an agent scheduled for removal.
type Casualty struct {
	Entity  ecs.Entity
	Faction components.Faction
	Cause   Cause
}

// CollisionSystem finds agents that reached their target or left the arena.
// It only detects; the caller removes casualties after the query closes.
type CollisionSystem struct {
	world      *ecs.World
	filter     *ecs.Filter3[components.Position, components.Warrior, components.Target]
	posMap     *ecs.Map1[components.Position]
	warriorMap *ecs.Map1[components.Warrior]

	casualties []Casualty
	seen       map[ecs.Entity]struct{}
}

// NewCollisionSystem creates a collision system over world.
func NewCollisionSystem(world *ecs.World) *CollisionSystem {
	return &CollisionSystem{
		world:      world,
		filter:     ecs.NewFilter3[components.Position, components.Warrior, components.Target](world),
		posMap:     ecs.NewMap1[components.Position](world),
		warriorMap: ecs.NewMap1[components.Warrior](world),
		seen:       make(map[ecs.Entity]struct{}),
	}
}

// Update returns the agents to remove this tick and the number of collisions.
// A mutual pair counts as one collision.
// A collision happens when an agent is strictly closer than destroyDistSq
// (squared) to its enabled target; both die. Agents beyond halfExtent on any axis leave the arena.
// All checks use positions from before any removal. The returned slice is
// reused by the next call.
func (c *CollisionSystem) Update(destroyDistSq, halfExtent float32) ([]Casualty, int) {
	c.casualties = c.casualties[:0]
	clear(c.seen)
	collisions := 0

	query := c.filter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, w, target := query.Get()
		p := pos.Vec()

		if outside(p[0], halfExtent) || outside(p[1], halfExtent) || outside(p[2], halfExtent) {
			c.add(entity, w.Faction, CauseBoundary)
			continue
		}

		if !target.Enabled || !c.world.Alive(target.Entity) {
			continue
		}
		if matching.DistSq(p, c.posMap.Get(target.Entity).Vec()) >= destroyDistSq {
			continue
		}

		first := c.add(entity, w.Faction, CauseCollision)
		second := c.add(target.Entity, c.warriorMap.Get(target.Entity).Faction, CauseCollision)
		if first || second {
			collisions++
		}
	}

	return c.casualties, collisions
}

// add records e once and reports whether it was new.
func (c *CollisionSystem) add(e ecs.Entity, f components.Faction, cause Cause) bool {
	if _, ok := c.seen[e]; ok {
		return false
	}
	c.seen[e] = struct{}{}
	c.casualties = append(c.casualties, Casualty{Entity: e, Faction: f, Cause: cause})
	return true
}

func outside(v, halfExtent float32) bool {
	return v > halfExtent || v < -halfExtent
}
