package game

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skirmish/components"
)

// Position returns the position of a living agent.
func (g *Game) Position(e ecs.Entity) (mgl32.Vec3, bool) {
	if !g.world.Alive(e) {
		return mgl32.Vec3{}, false
	}
	return g.posMap.Get(e).Vec(), true
}

// Target returns the target of a living agent.
func (g *Game) Target(e ecs.Entity) (components.Target, bool) {
	if !g.world.Alive(e) {
		return components.Target{}, false
	}
	return *g.targetMap.Get(e), true
}

// SetTarget overrides an agent's target, for scripted scenarios.
// Enabling requires target to be alive.
func (g *Game) SetTarget(e, target ecs.Entity, enabled bool) error {
	if g.inMatch.Load() {
		return ErrMatchInFlight
	}
	if !g.world.Alive(e) {
		return ErrUnknownEntity
	}
	if enabled && !g.world.Alive(target) {
		return ErrUnknownEntity
	}

	t := g.targetMap.Get(e)
	t.Entity = target
	t.Enabled = enabled
	return nil
}

// Enumerate lists the living agents of faction f in query order.
func (g *Game) Enumerate(f components.Faction) []Member {
	members := make([]Member, 0, g.counts[f])

	query := g.agentFilter.Query()
	for query.Next() {
		pos, w, target := query.Get()
		if w.Faction != f {
			continue
		}
		members = append(members, Member{
			Entity:   query.Entity(),
			Position: *pos,
			Target:   *target,
		})
	}
	return members
}
