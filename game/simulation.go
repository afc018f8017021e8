package game

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/skirmish/components"
	"github.com/pthm-cable/skirmish/telemetry"
)

// matchOrder is the order factions are matched and applied in.
var matchOrder = [2]components.Faction{components.Blue, components.Red}

// Step advances the simulation by dt seconds.
//
// dt must be finite and non-negative; otherwise ErrInvalidDeltaTime is
// returned and nothing changes. If matching or its validation fails, no
// target of this tick is written, the tick counter does not advance and the
// error is returned; the next Step starts clean.
func (g *Game) Step(dt float32) error {
	if dt < 0 || math.IsNaN(float64(dt)) || math.IsInf(float64(dt), 0) {
		return fmt.Errorf("%w: %v", ErrInvalidDeltaTime, dt)
	}

	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseReconcile)
	g.collector.RecordReconciled(g.reconcile.Update())

	if !g.paused {
		g.perfCollector.StartPhase(telemetry.PhaseSpawn)
		g.spawners.Update(dt, func(f components.Faction, pos mgl32.Vec3) {
			g.spawn(f, pos)
		})
	}

	g.perfCollector.StartPhase(telemetry.PhaseSnapshot)
	g.snapshot.Update(&g.buffers, !g.cfg.Derived.RematchEveryTick)

	g.perfCollector.StartPhase(telemetry.PhaseMatch)
	if err := g.matchFactions(); err != nil {
		return g.failTick("match", err)
	}

	g.perfCollector.StartPhase(telemetry.PhaseApply)
	if err := g.applyResults(); err != nil {
		return g.failTick("apply", err)
	}

	if !g.paused {
		g.perfCollector.StartPhase(telemetry.PhaseMovement)
		g.movement.Update(dt, g.cfg.Derived.Speed32)
	}

	g.perfCollector.StartPhase(telemetry.PhaseCollision)
	casualties, collisions := g.collision.Update(g.cfg.Derived.DestroyDistSq32, g.cfg.Derived.HalfExtent32)
	g.collector.RecordCollisions(collisions)
	g.removeCasualties(casualties)

	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
	return nil
}

// matchFactions computes results for both factions before any is applied.
func (g *Game) matchFactions() error {
	g.inMatch.Store(true)
	defer g.inMatch.Store(false)

	for _, f := range matchOrder {
		res, err := g.matcher.MatchInto(
			g.results[f],
			g.buffers.Sources[f].Positions,
			g.buffers.All[f.Enemy()].Positions,
		)
		if err != nil {
			return fmt.Errorf("matching %s against %s: %w", f, f.Enemy(), err)
		}
		g.results[f] = res
	}
	return nil
}

// applyResults validates both result sets, then writes them.
func (g *Game) applyResults() error {
	for _, f := range matchOrder {
		if err := g.apply.Validate(&g.buffers.Sources[f], g.results[f], &g.buffers.All[f.Enemy()]); err != nil {
			return fmt.Errorf("applying %s targets: %w", f, err)
		}
	}

	for _, f := range matchOrder {
		n, err := g.apply.Apply(&g.buffers.Sources[f], g.results[f], &g.buffers.All[f.Enemy()])
		if err != nil {
			return fmt.Errorf("applying %s targets: %w", f, err)
		}
		g.collector.RecordAssignments(n)
	}
	return nil
}

func (g *Game) failTick(stage string, err error) error {
	g.perfCollector.AbortTick()
	g.collector.RecordFailedTick()
	slog.Error("tick failed",
		"tick", g.tick,
		"stage", stage,
		"strategy", g.matcher.Name(),
		"error", err,
	)
	return err
}
