package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/skirmish/config"
	"github.com/pthm-cable/skirmish/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	strategy := flag.String("strategy", "", "Override matching.strategy (sequential, parallel, native)")
	library := flag.String("native-lib", "", "Override native.library")
	maxFailures := flag.Int("max-failures", 100, "Abort after N consecutive failed ticks (0 = never)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *strategy != "" || *library != "" {
		if *strategy != "" {
			cfg.Matching.Strategy = *strategy
		}
		if *library != "" {
			cfg.Native.Library = *library
		}
		if err := cfg.Resolve(); err != nil {
			slog.Error("invalid flag override", "error", err)
			os.Exit(1)
		}
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	g, err := game.NewGame(game.Options{
		Config:         cfg,
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
	})
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	slog.Info("starting headless simulation",
		"seed", rngSeed,
		"strategy", g.Strategy(),
		"max_ticks", *maxTicks,
		"output_dir", *outputDir,
	)

	dt := cfg.Derived.DT32
	failures := 0
	start := time.Now()
	for {
		if err := g.Step(dt); err != nil {
			// Already logged by the game; the next tick starts clean.
			failures++
			if *maxFailures > 0 && failures >= *maxFailures {
				slog.Error("too many consecutive failed ticks", "failures", failures)
				break
			}
			continue
		}
		failures = 0

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}

	red, blue := g.Counts()
	slog.Info("simulation finished",
		"tick", g.Tick(),
		"red", red,
		"blue", blue,
		"elapsed", time.Since(start).String(),
	)
}
