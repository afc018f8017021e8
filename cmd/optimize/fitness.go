package main

import (
	"context"
	"log/slog"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/pthm-cable/skirmish/config"
	"github.com/pthm-cable/skirmish/game"
	"github.com/pthm-cable/skirmish/telemetry"
)

// FitnessEvaluator runs headless battles and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64
	jobs        *semaphore.Weighted // bounds concurrent battles

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. At most jobs battles run at
// once; jobs <= 0 uses GOMAXPROCS.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, jobs int) *FitnessEvaluator {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return &FitnessEvaluator{
		jobs:        semaphore.NewWeighted(int64(jobs)),
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 5.0,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single battle.
type runResult struct {
	survivalTicks int32                   // ticks before a faction was wiped out (or maxTicks)
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness rewards battles where both factions survive long and stay balanced.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	fitness := make([]float64, len(fe.seeds))
	quality := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup

	ctx := context.Background()
	for i, seed := range fe.seeds {
		if err := fe.jobs.Acquire(ctx, 1); err != nil {
			fitness[i] = math.Inf(1)
			continue
		}
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			defer fe.jobs.Release(1)
			result, err := fe.runSimulation(x, s)
			if err != nil {
				slog.Error("evaluation failed", "seed", s, "error", err)
				fitness[idx] = math.Inf(1)
				return
			}
			quality[idx] = computeQuality(result.windowStats)
			fitness[idx] = -float64(result.survivalTicks) * (1 + 0.2*quality[idx])
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for i := range fitness {
		totalFitness += fitness[i]
		totalQuality += quality[i]
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless battle until one faction is
// gone or maxTicks pass.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (*runResult, error) {
	cfg := fe.copyConfig()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return nil, err
	}

	result := &runResult{}
	g, err := game.NewGame(game.Options{
		Config:         cfg,
		Seed:           seed,
		StatsWindowSec: fe.statsWindow,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer g.Close()

	dt := cfg.Derived.DT32
	for g.Tick() < fe.maxTicks {
		if err := g.Step(dt); err != nil {
			return nil, err
		}
		if red, blue := g.Counts(); red == 0 || blue == 0 {
			break
		}
	}
	result.survivalTicks = g.Tick()
	return result, nil
}

// computeQuality scores balance in [0, 1]: 1 when both factions are equal
// in every window.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) == 0 {
		return 0
	}
	var sum float64
	for _, w := range windows {
		total := w.RedCount + w.BlueCount
		if total == 0 {
			continue
		}
		sum += 1 - math.Abs(float64(w.RedCount-w.BlueCount))/float64(total)
	}
	return sum / float64(len(windows))
}

// copyConfig returns a config safe to mutate from one goroutine. Each run
// matches sequentially so parallel seeds do not oversubscribe the CPU.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Spawners = append([]config.SpawnerConfig(nil), fe.baseConfig.Spawners...)
	cfg.Matching.Strategy = config.StrategySequential
	cfg.Matching.Workers = 1
	return &cfg
}
