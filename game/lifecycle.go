package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skirmish/components"
	"github.com/pthm-cable/skirmish/systems"
)

// spawnInitialPopulation scatters the starting agents: red on the negative
// x half of the arena, blue on the positive half.
func (g *Game) spawnInitialPopulation() {
	h := g.cfg.Derived.HalfExtent32
	y := g.cfg.Derived.SpawnOffset32

	for i := 0; i < g.cfg.Population.InitialPerFaction; i++ {
		for _, f := range []components.Faction{components.Red, components.Blue} {
			x := g.rng.Float32() * h
			if f == components.Red {
				x = -x
			}
			z := (g.rng.Float32()*2 - 1) * h
			g.spawn(f, mgl32.Vec3{x, y, z})
		}
	}
}

// Spawn creates an agent of faction f at pos with a disabled target.
func (g *Game) Spawn(f components.Faction, pos mgl32.Vec3) (ecs.Entity, error) {
	if !f.Valid() {
		return ecs.Entity{}, fmt.Errorf("%w: %d", ErrUnknownFaction, f)
	}
	return g.spawn(f, pos), nil
}

// spawn creates an agent; f must be valid.
func (g *Game) spawn(f components.Faction, pos mgl32.Vec3) ecs.Entity {
	id := g.nextID
	g.nextID++

	p := components.PositionOf(pos)
	w := components.Warrior{ID: id, Faction: f}
	t := components.Target{}

	entity := g.agentMapper.NewEntity(&p, &w, &t)
	g.counts[f]++
	g.collector.RecordSpawn(f)

	return entity
}

// Destroy removes an agent. Targets pointing at it are disabled by the next
// tick's reconciliation.
func (g *Game) Destroy(e ecs.Entity) error {
	if g.inMatch.Load() {
		return ErrMatchInFlight
	}
	if !g.world.Alive(e) {
		return ErrUnknownEntity
	}
	g.removeAgent(e)
	return nil
}

// removeAgent must not be called while a query is open.
func (g *Game) removeAgent(e ecs.Entity) {
	f := g.warriorMap.Get(e).Faction
	g.counts[f]--
	g.collector.RecordDeath(f)
	g.world.RemoveEntity(e)
}

// removeCasualties applies the collision system's findings.
func (g *Game) removeCasualties(casualties []systems.Casualty) {
	for _, c := range casualties {
		if !g.world.Alive(c.Entity) {
			continue
		}
		if c.Cause == systems.CauseBoundary {
			g.collector.RecordBoundaryExit()
		}
		g.removeAgent(c.Entity)
	}
}
