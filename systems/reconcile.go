package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skirmish/components"
)

// ReconcileSystem disables targets whose referent no longer exists.
// It is the only place a target is disabled without a fresh match.
type ReconcileSystem struct {
	world  *ecs.World
	filter *ecs.Filter1[components.Target]
}

// NewReconcileSystem creates a reconcile system over world.
func NewReconcileSystem(world *ecs.World) *ReconcileSystem {
	return &ReconcileSystem{
		world:  world,
		filter: ecs.NewFilter1[components.Target](world),
	}
}

// Update disables dangling targets and returns how many were disabled.
func (r *ReconcileSystem) Update() int {
	disabled := 0

	query := r.filter.Query()
	for query.Next() {
		target := query.Get()
		if !target.Enabled || r.world.Alive(target.Entity) {
			continue
		}
		target.Enabled = false
		disabled++
	}
	return disabled
}
