// Package game wires the ECS world, the matching strategy and the per-tick
// systems into a headless Red vs Blue simulation.
package game

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skirmish/components"
	"github.com/pthm-cable/skirmish/config"
	"github.com/pthm-cable/skirmish/matching"
	"github.com/pthm-cable/skirmish/systems"
	"github.com/pthm-cable/skirmish/telemetry"
)

var (
	// ErrInvalidDeltaTime is returned by Step for a negative or non-finite dt.
	ErrInvalidDeltaTime = errors.New("game: invalid delta time")
	// ErrMatchInFlight is returned when the world is changed while a match runs.
	ErrMatchInFlight = errors.New("game: match in flight")
	// ErrUnknownEntity is returned for handles that do not name a living agent.
	ErrUnknownEntity = errors.New("game: unknown entity")
	// ErrUnknownFaction is returned by Spawn for a faction other than Red or Blue.
	ErrUnknownFaction = errors.New("game: unknown faction")
)

// Options configures a Game.
type Options struct {
	Config         *config.Config   // nil = config.Cfg()
	Seed           int64            // RNG seed for the initial population
	LogStats       bool             // log window and perf stats via slog
	StatsWindowSec float64          // 0 = config telemetry.stats_window
	OutputDir      string           // CSV and config output, empty = disabled
	Matcher        matching.Matcher // overrides strategy resolution when set
	StatsCallback  func(telemetry.WindowStats)
}

// Member describes one living agent.
type Member struct {
	Entity   ecs.Entity
	Position components.Position
	Target   components.Target
}

// Game holds the complete simulation state.
type Game struct {
	cfg     *config.Config
	world   *ecs.World
	rng     *rand.Rand
	rngSeed int64

	agentMapper *ecs.Map3[components.Position, components.Warrior, components.Target]
	agentFilter *ecs.Filter3[components.Position, components.Warrior, components.Target]
	posMap      *ecs.Map1[components.Position]
	warriorMap  *ecs.Map1[components.Warrior]
	targetMap   *ecs.Map1[components.Target]

	snapshot  *systems.SnapshotSystem
	apply     *systems.ApplySystem
	reconcile *systems.ReconcileSystem
	movement  *systems.MovementSystem
	collision *systems.CollisionSystem
	spawners  *systems.SpawnerSystem

	matcher matching.Matcher
	buffers systems.FactionBuffers
	results [2][]int32
	inMatch atomic.Bool

	// State
	tick   int32
	paused bool
	nextID uint32
	counts [2]int

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
	distances        []float64
}

// NewGame creates a game, resolves its matching strategy and spawns the
// initial population.
func NewGame(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	world := ecs.NewWorld()

	g := &Game{
		cfg:     cfg,
		world:   world,
		rng:     rand.New(rand.NewSource(opts.Seed)),
		rngSeed: opts.Seed,

		agentMapper: ecs.NewMap3[components.Position, components.Warrior, components.Target](world),
		agentFilter: ecs.NewFilter3[components.Position, components.Warrior, components.Target](world),
		posMap:      ecs.NewMap1[components.Position](world),
		warriorMap:  ecs.NewMap1[components.Warrior](world),
		targetMap:   ecs.NewMap1[components.Target](world),

		snapshot:  systems.NewSnapshotSystem(world),
		apply:     systems.NewApplySystem(world),
		reconcile: systems.NewReconcileSystem(world),
		movement:  systems.NewMovementSystem(world),
		collision: systems.NewCollisionSystem(world),
		spawners:  systems.NewSpawnerSystem(spawnersFromConfig(cfg), cfg.Derived.SpawnOffset32),

		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Derived.DT32)
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("setting up output: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	g.matcher = opts.Matcher
	if g.matcher == nil {
		g.matcher = resolveMatcher(cfg)
	}
	slog.Info("matcher selected",
		"strategy", g.matcher.Name(),
		"tie_break", g.matcher.Policy().String(),
		"rematch", cfg.Matching.Rematch,
	)

	g.spawnInitialPopulation()

	return g, nil
}

// spawnersFromConfig converts spawner entries; Validate has already
// checked every faction name.
func spawnersFromConfig(cfg *config.Config) []systems.Spawner {
	out := make([]systems.Spawner, 0, len(cfg.Spawners))
	for _, sc := range cfg.Spawners {
		f, _ := components.ParseFaction(sc.Faction)
		out = append(out, systems.Spawner{
			Faction: f,
			Position: mgl32.Vec3{
				float32(sc.Position[0]), float32(sc.Position[1]), float32(sc.Position[2]),
			},
			Delay: float32(sc.Delay),
		})
	}
	return out
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// Strategy returns the name of the active matcher.
func (g *Game) Strategy() string {
	return g.matcher.Name()
}

// SetPaused freezes movement and spawning. Targeting keeps running.
func (g *Game) SetPaused(paused bool) {
	g.paused = paused
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// Counts returns the number of living agents per faction.
func (g *Game) Counts() (red, blue int) {
	return g.counts[components.Red], g.counts[components.Blue]
}

// Close releases the matcher and flushes output files.
func (g *Game) Close() error {
	var firstErr error
	if c, ok := g.matcher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			firstErr = err
		}
	}
	if err := g.outputManager.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
