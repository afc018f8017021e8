package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skirmish/components"
	"github.com/pthm-cable/skirmish/matching"
)

// ApplySystem writes match results back onto agents as targets.
// It performs no searching.
type ApplySystem struct {
	world     *ecs.World
	targetMap *ecs.Map1[components.Target]
}

// NewApplySystem creates an apply system over world.
func NewApplySystem(world *ecs.World) *ApplySystem {
	return &ApplySystem{
		world:     world,
		targetMap: ecs.NewMap1[components.Target](world),
	}
}

// Apply assigns candidates.Handles[results[i]] to sources.Handles[i] and
// enables the target. NoCandidate entries leave the target untouched.
// Every input is validated before the first write; on error nothing changes.
// Returns the number of targets assigned.
func (a *ApplySystem) Apply(sources *PositionBuffer, results []int32, candidates *PositionBuffer) (int, error) {
	if err := a.Validate(sources, results, candidates); err != nil {
		return 0, err
	}

	assigned := 0
	for i, idx := range results {
		if idx == matching.NoCandidate {
			continue
		}
		entity := sources.Handles[i]
		if !a.world.Alive(entity) {
			continue
		}
		target := a.targetMap.Get(entity)
		target.Entity = candidates.Handles[idx]
		target.Enabled = true
		assigned++
	}
	return assigned, nil
}

// Validate reports whether Apply would accept the inputs.
func (a *ApplySystem) Validate(sources *PositionBuffer, results []int32, candidates *PositionBuffer) error {
	if err := sources.Validate(); err != nil {
		return err
	}
	if err := candidates.Validate(); err != nil {
		return err
	}
	if len(results) != sources.Len() {
		return fmt.Errorf("%w: %d results for %d sources", matching.ErrInvalidBufferLength, len(results), sources.Len())
	}
	for i, idx := range results {
		if idx == matching.NoCandidate {
			continue
		}
		if idx < 0 || int(idx) >= candidates.Len() {
			return fmt.Errorf("%w: results[%d] = %d with %d candidates", matching.ErrInvalidBufferLength, i, idx, candidates.Len())
		}
	}
	return nil
}
