package telemetry

import "github.com/pthm-cable/skirmish/components"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	spawns        [2]int
	deaths        [2]int
	collisions    int
	boundaryExits int
	assignments   int
	reconciled    int
	failedTicks   int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordSpawn records an agent joining faction f.
func (c *Collector) RecordSpawn(f components.Faction) {
	c.spawns[f]++
}

// RecordDeath records an agent of faction f being removed.
func (c *Collector) RecordDeath(f components.Faction) {
	c.deaths[f]++
}

// RecordCollisions records n agent/target collisions.
func (c *Collector) RecordCollisions(n int) {
	c.collisions += n
}

// RecordBoundaryExit records an agent leaving the arena.
func (c *Collector) RecordBoundaryExit() {
	c.boundaryExits++
}

// RecordAssignments records n targets written by a match.
func (c *Collector) RecordAssignments(n int) {
	c.assignments += n
}

// RecordReconciled records n dangling targets disabled.
func (c *Collector) RecordReconciled(n int) {
	c.reconciled += n
}

// RecordFailedTick records a tick that returned an error.
func (c *Collector) RecordFailedTick() {
	c.failedTicks++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// targetDistances holds the current distance from each targeting agent to
// its target.
func (c *Collector) Flush(currentTick int32, redCount, blueCount int, targetDistances []float64) WindowStats {
	mean, std, p50, p90 := ComputeDistanceStats(targetDistances)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		RedCount:  redCount,
		BlueCount: blueCount,

		RedSpawns:     c.spawns[components.Red],
		BlueSpawns:    c.spawns[components.Blue],
		RedDeaths:     c.deaths[components.Red],
		BlueDeaths:    c.deaths[components.Blue],
		Collisions:    c.collisions,
		BoundaryExits: c.boundaryExits,

		Assignments: c.assignments,
		Reconciled:  c.reconciled,
		FailedTicks: c.failedTicks,

		TargetDistMean: mean,
		TargetDistStd:  std,
		TargetDistP50:  p50,
		TargetDistP90:  p90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.spawns = [2]int{}
	c.deaths = [2]int{}
	c.collisions = 0
	c.boundaryExits = 0
	c.assignments = 0
	c.reconciled = 0
	c.failedTicks = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
