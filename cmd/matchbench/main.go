// Command matchbench times every matching strategy over a grid of agent
// counts and worker counts and appends the results to a CSV file.
//
// Profiling:
// go run ./cmd/matchbench -profile cpu
// go tool pprof -http=":8000" cpu.pprof
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gocarina/gocsv"
	"github.com/pkg/profile"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/skirmish/matching"
	"github.com/pthm-cable/skirmish/native"
)

// Result is one row of the benchmark CSV.
type Result struct {
	Strategy   string  `csv:"strategy"`
	Workers    int     `csv:"workers"`
	Agents     int     `csv:"agents"`
	Rounds     int     `csv:"rounds"`
	MeanMS     float64 `csv:"mean_ms"`
	StdMS      float64 `csv:"std_ms"`
	MinMS      float64 `csv:"min_ms"`
	MaxMS      float64 `csv:"max_ms"`
	PairsPerUS float64 `csv:"pairs_per_us"`
}

func main() {
	sizes := flag.String("sizes", "100,1000,4000", "Comma-separated agents per faction")
	workerList := flag.String("workers", "", "Comma-separated worker counts (empty = 1,2,4,GOMAXPROCS)")
	rounds := flag.Int("rounds", 10, "Timed rounds per configuration")
	library := flag.String("native-lib", "", "Kernel library to include in the run")
	out := flag.String("out", "matchbench.csv", "CSV file to append results to")
	prof := flag.String("profile", "", "Write a cpu or mem profile to the working directory")
	seed := flag.Int64("seed", 1, "RNG seed for agent positions")
	flag.Parse()

	if *rounds < 2 {
		log.Fatal("-rounds must be at least 2")
	}

	switch *prof {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		log.Fatalf("unknown profile %q", *prof)
	}

	agentCounts, err := parseInts(*sizes)
	if err != nil {
		log.Fatalf("bad -sizes: %v", err)
	}
	workers, err := parseInts(*workerList)
	if err != nil {
		log.Fatalf("bad -workers: %v", err)
	}
	if len(workers) == 0 {
		workers = []int{1, 2, 4, runtime.GOMAXPROCS(0)}
	}

	var kernel *native.Library
	if *library != "" {
		kernel, err = native.Open(*library)
		if err != nil {
			log.Fatalf("loading kernel: %v", err)
		}
		defer kernel.Close()
	}

	rng := rand.New(rand.NewSource(*seed))
	var results []Result

	for _, n := range agentCounts {
		sources := randomPoints(rng, n)
		candidates := randomPoints(rng, n)

		reference, _ := matching.Match(matching.NewSequential(matching.KeepFirst), sources, candidates)

		results = append(results, bench(matching.NewSequential(matching.KeepFirst), 1, sources, candidates, reference, *rounds))
		for _, w := range workers {
			p := matching.NewParallel(w, matching.KeepFirst)
			results = append(results, bench(p, w, sources, candidates, reference, *rounds))
			p.Close()
		}
		if kernel != nil {
			bridge := native.NewBridge(kernel, matching.KeepFirst)
			results = append(results, bench(bridge, 1, sources, candidates, reference, *rounds))
		}
	}

	for _, r := range results {
		fmt.Printf("%-10s workers=%-3d agents=%-6d mean=%8.3fms std=%7.3fms min=%8.3fms\n",
			r.Strategy, r.Workers, r.Agents, r.MeanMS, r.StdMS, r.MinMS)
	}

	if err := appendResults(*out, results); err != nil {
		log.Fatalf("writing results: %v", err)
	}
}

func bench(m matching.Matcher, workers int, sources, candidates []mgl32.Vec3, reference []int32, rounds int) Result {
	// Warm up worker pools and buffers.
	dst, err := m.MatchInto(nil, sources, candidates)
	if err != nil {
		log.Fatalf("%s: %v", m.Name(), err)
	}
	for i := range reference {
		if dst[i] != reference[i] {
			log.Fatalf("%s (workers=%d) disagrees with sequential at %d: %d vs %d", m.Name(), workers, i, dst[i], reference[i])
		}
	}

	timings := make([]float64, rounds)
	for r := range timings {
		start := time.Now()
		dst, err = m.MatchInto(dst, sources, candidates)
		if err != nil {
			log.Fatalf("%s: %v", m.Name(), err)
		}
		timings[r] = float64(time.Since(start)) / float64(time.Millisecond)
	}

	mean, std := stat.MeanStdDev(timings, nil)
	minMS := floats.Min(timings)
	pairs := float64(len(sources)) * float64(len(candidates))
	var throughput float64
	if minMS > 0 {
		throughput = pairs / (minMS * 1000)
	}

	return Result{
		Strategy:   m.Name(),
		Workers:    workers,
		Agents:     len(sources),
		Rounds:     rounds,
		MeanMS:     mean,
		StdMS:      std,
		MinMS:      minMS,
		MaxMS:      floats.Max(timings),
		PairsPerUS: throughput,
	}
}

// appendResults writes the header only when the file is new or empty.
func appendResults(path string, results []Result) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return gocsv.Marshal(results, f)
	}
	return gocsv.MarshalWithoutHeaders(results, f)
}

func parseInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			return nil, fmt.Errorf("%d must be positive", v)
		}
		out = append(out, v)
	}
	return out, nil
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
