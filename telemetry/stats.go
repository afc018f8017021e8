package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	RedCount  int `csv:"red"`
	BlueCount int `csv:"blue"`

	// Events during window
	RedSpawns     int `csv:"red_spawns"`
	BlueSpawns    int `csv:"blue_spawns"`
	RedDeaths     int `csv:"red_deaths"`
	BlueDeaths    int `csv:"blue_deaths"`
	Collisions    int `csv:"collisions"`
	BoundaryExits int `csv:"boundary_exits"`

	// Targeting
	Assignments int `csv:"assignments"`
	Reconciled  int `csv:"reconciled"`
	FailedTicks int `csv:"failed_ticks"`

	// Distance from each targeting agent to its target (sampled at window end)
	TargetDistMean float64 `csv:"target_dist_mean"`
	TargetDistStd  float64 `csv:"target_dist_std"`
	TargetDistP50  float64 `csv:"target_dist_p50"`
	TargetDistP90  float64 `csv:"target_dist_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistanceStats calculates mean, sample standard deviation, and
// percentiles from target distances. values is not modified.
func ComputeDistanceStats(values []float64) (mean, std, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}
	if n == 1 {
		return values[0], 0, values[0], values[0]
	}

	mean, std = stat.MeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("red", s.RedCount),
		slog.Int("blue", s.BlueCount),
		slog.Int("red_spawns", s.RedSpawns),
		slog.Int("blue_spawns", s.BlueSpawns),
		slog.Int("red_deaths", s.RedDeaths),
		slog.Int("blue_deaths", s.BlueDeaths),
		slog.Int("collisions", s.Collisions),
		slog.Int("boundary_exits", s.BoundaryExits),
		slog.Int("assignments", s.Assignments),
		slog.Int("reconciled", s.Reconciled),
		slog.Int("failed_ticks", s.FailedTicks),
		slog.Float64("target_dist_mean", s.TargetDistMean),
		slog.Float64("target_dist_std", s.TargetDistStd),
		slog.Float64("target_dist_p50", s.TargetDistP50),
		slog.Float64("target_dist_p90", s.TargetDistP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"red", s.RedCount,
		"blue", s.BlueCount,
		"red_spawns", s.RedSpawns,
		"blue_spawns", s.BlueSpawns,
		"red_deaths", s.RedDeaths,
		"blue_deaths", s.BlueDeaths,
		"collisions", s.Collisions,
		"boundary_exits", s.BoundaryExits,
		"assignments", s.Assignments,
		"reconciled", s.Reconciled,
		"failed_ticks", s.FailedTicks,
		"target_dist_mean", s.TargetDistMean,
		"target_dist_p50", s.TargetDistP50,
		"target_dist_p90", s.TargetDistP90,
	)
}
