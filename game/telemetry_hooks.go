package game

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/skirmish/matching"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	red, blue := g.Counts()
	stats := g.collector.Flush(g.tick, red, blue, g.sampleTargetDistances())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick, g.matcher.Name()); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// sampleTargetDistances collects the distance from every targeting agent to
// its target. The returned slice is reused by the next call.
func (g *Game) sampleTargetDistances() []float64 {
	g.distances = g.distances[:0]

	query := g.agentFilter.Query()
	for query.Next() {
		pos, _, target := query.Get()
		if !target.Enabled || !g.world.Alive(target.Entity) {
			continue
		}
		d := matching.DistSq(pos.Vec(), g.posMap.Get(target.Entity).Vec())
		g.distances = append(g.distances, math.Sqrt(float64(d)))
	}
	return g.distances
}
