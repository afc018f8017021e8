// Package systems provides ECS systems for the simulation.
package systems

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skirmish/components"
	"github.com/pthm-cable/skirmish/matching"
)

// PositionBuffer is an index-aligned view of agent handles and positions
// captured at snapshot time. It is rebuilt every tick and must not be
// mutated while a matcher reads it.
type PositionBuffer struct {
	Handles   []ecs.Entity
	Positions []mgl32.Vec3
}

// Reset empties the buffer, keeping its capacity.
func (b *PositionBuffer) Reset() {
	b.Handles = b.Handles[:0]
	b.Positions = b.Positions[:0]
}

// Append adds one agent.
func (b *PositionBuffer) Append(e ecs.Entity, p mgl32.Vec3) {
	b.Handles = append(b.Handles, e)
	b.Positions = append(b.Positions, p)
}

// Len returns the number of agents in the buffer.
func (b *PositionBuffer) Len() int {
	return len(b.Handles)
}

// Validate checks that handles and positions are index-aligned.
func (b *PositionBuffer) Validate() error {
	if len(b.Handles) != len(b.Positions) {
		return fmt.Errorf("%w: %d handles, %d positions", matching.ErrInvalidBufferLength, len(b.Handles), len(b.Positions))
	}
	return nil
}

// FactionBuffers holds one tick's snapshots, indexed by components.Faction.
type FactionBuffers struct {
	All     [2]PositionBuffer // every living agent: the candidate sets
	Sources [2]PositionBuffer // agents to (re)match this tick
}

// SnapshotSystem extracts positions of living agents.
type SnapshotSystem struct {
	filter *ecs.Filter3[components.Position, components.Warrior, components.Target]
}

// NewSnapshotSystem creates a snapshot system over world.
func NewSnapshotSystem(world *ecs.World) *SnapshotSystem {
	return &SnapshotSystem{
		filter: ecs.NewFilter3[components.Position, components.Warrior, components.Target](world),
	}
}

// Faction fills buf with the living agents of faction f. With onlyUntargeted
// set, agents whose target is enabled are skipped. Order follows the ECS
// query and is not stable across destructions.
func (s *SnapshotSystem) Faction(buf *PositionBuffer, f components.Faction, onlyUntargeted bool) {
	buf.Reset()

	query := s.filter.Query()
	for query.Next() {
		pos, w, target := query.Get()
		if w.Faction != f || (onlyUntargeted && target.Enabled) {
			continue
		}
		buf.Append(query.Entity(), pos.Vec())
	}
}

// Update fills all buffers of fb in a single pass.
func (s *SnapshotSystem) Update(fb *FactionBuffers, onlyUntargeted bool) {
	for i := range fb.All {
		fb.All[i].Reset()
		fb.Sources[i].Reset()
	}

	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, w, target := query.Get()

		p := pos.Vec()
		fb.All[w.Faction].Append(entity, p)
		if !onlyUntargeted || !target.Enabled {
			fb.Sources[w.Faction].Append(entity, p)
		}
	}
}
