// Command ffiprobe loads a target kernel library, runs its diagnostic
// exports and checks compute_targets against the managed matcher.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/skirmish/matching"
	"github.com/pthm-cable/skirmish/native"
)

func main() {
	library := flag.String("lib", "", "Path to the kernel shared library")
	tieBreak := flag.String("tie-break", "keep_first", "Comparison the kernel is built with")
	n := flag.Int("n", 1000, "Sources and candidates for the random comparison")
	seed := flag.Int64("seed", 1, "RNG seed for the random comparison")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	policy, err := matching.ParseTieBreak(*tieBreak)
	if err != nil {
		slog.Error("bad tie-break", "error", err)
		os.Exit(2)
	}

	lib, err := native.Open(*library)
	if err != nil {
		slog.Error("failed to load kernel", "library", *library, "error", err)
		os.Exit(1)
	}
	bridge := native.NewBridge(lib, policy)
	defer bridge.Close()

	if err := run(lib, bridge, *n, *seed); err != nil {
		slog.Error("probe failed", "error", err)
		os.Exit(1)
	}
	fmt.Println("ok")
}

func run(kernel native.Kernel, bridge *native.Bridge, n int, seed int64) error {
	fmt.Printf("return42() = %d\n", kernel.Return42())
	fmt.Printf("my_add(45, 24) = %d\n", kernel.Add(45, 24))

	err := bridge.WithProbe(func(p native.Float3) error {
		fmt.Printf("returnMyStruct() = {%g, %g, %g}\n", p.X, p.Y, p.Z)
		return nil
	})
	if err != nil {
		return err
	}
	if err := bridge.SelfTest(); err != nil {
		return err
	}

	// Known scenario: nearest to the origin is the last candidate, nearest
	// to (10,10,10) is the first.
	sources := []mgl32.Vec3{{0, 0, 0}, {10, 10, 10}}
	candidates := []mgl32.Vec3{{9, 9, 9}, {50, 50, 50}, {1, 1, 1}, {-0.5, -0.5, -0.5}}
	got, err := matching.Match(bridge, sources, candidates)
	if err != nil {
		return err
	}
	fmt.Printf("compute_targets(scenario) = %v\n", got)
	if got[0] != 3 || got[1] != 0 {
		return fmt.Errorf("scenario result %v, want [3 0]", got)
	}

	empty, err := matching.Match(bridge, sources, nil)
	if err != nil {
		return err
	}
	for _, idx := range empty {
		if idx != matching.NoCandidate {
			return fmt.Errorf("empty candidates gave %v", empty)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	src := randomPoints(rng, n)
	cands := randomPoints(rng, n)

	nativeRes, err := matching.Match(bridge, src, cands)
	if err != nil {
		return err
	}
	if err := matching.Verify(nativeRes, src, cands); err != nil {
		return err
	}

	managed, err := matching.Match(matching.NewSequential(bridge.Policy()), src, cands)
	if err != nil {
		return err
	}
	mismatches := 0
	for i := range managed {
		if managed[i] != nativeRes[i] {
			mismatches++
		}
	}
	fmt.Printf("random %dx%d: %d mismatches against sequential\n", n, n, mismatches)
	if mismatches > 0 {
		return errors.New("kernel disagrees with the managed matcher")
	}

	if live := native.LiveBuffers(); live != 0 {
		return fmt.Errorf("%d marshal buffers still held", live)
	}
	return nil
}

func randomPoints(rng *rand.Rand, n int) []mgl32.Vec3 {
	pts := make([]mgl32.Vec3, n)
	for i := range pts {
		pts[i] = mgl32.Vec3{
			rng.Float32()*200 - 100,
			rng.Float32()*200 - 100,
			rng.Float32()*200 - 100,
		}
	}
	return pts
}
