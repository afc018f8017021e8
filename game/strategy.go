package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/skirmish/config"
	"github.com/pthm-cable/skirmish/matching"
	"github.com/pthm-cable/skirmish/native"
)

// resolveMatcher picks the matcher named by config. A native matcher that
// cannot be loaded, fails its self-test, or declares a different tie-break
// than the simulation uses is replaced by a managed one.
func resolveMatcher(cfg *config.Config) matching.Matcher {
	policy := policyOf(cfg.Derived.OverwriteOnEqual)

	switch cfg.Matching.Strategy {
	case config.StrategySequential:
		return matching.NewSequential(policy)
	case config.StrategyNative:
		m, err := openNative(cfg.Native.Library, policyOf(cfg.Derived.NativeOverwrites), policy)
		if err == nil {
			return m
		}
		fallback := managedMatcher(cfg.Matching.Workers, policy)
		slog.Warn("native matcher unavailable, using managed fallback",
			"library", cfg.Native.Library,
			"fallback", fallback.Name(),
			"error", err,
		)
		return fallback
	}
	return matching.NewParallel(cfg.Matching.Workers, policy)
}

// managedMatcher is the fallback for the native strategy.
func managedMatcher(workers int, policy matching.TieBreak) matching.Matcher {
	if workers == 1 {
		return matching.NewSequential(policy)
	}
	return matching.NewParallel(workers, policy)
}

func openNative(path string, declared, want matching.TieBreak) (matching.Matcher, error) {
	if declared != want {
		return nil, fmt.Errorf("%w: kernel declares %s, simulation uses %s", native.ErrUnavailable, declared, want)
	}

	lib, err := native.Open(path)
	if err != nil {
		return nil, err
	}

	bridge := native.NewBridge(lib, declared)
	if err := bridge.SelfTest(); err != nil {
		bridge.Close()
		return nil, err
	}

	slog.Info("native kernel loaded", "library", path)
	return bridge, nil
}

func policyOf(overwrite bool) matching.TieBreak {
	if overwrite {
		return matching.OverwriteOnEqual
	}
	return matching.KeepFirst
}
