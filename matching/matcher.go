// Package matching assigns every source position the index of its nearest candidate.
//
// All strategies share the same contract: squared Euclidean distance, a full
// scan of the candidate set per source, and an explicit tie-break policy.
// An empty candidate set yields NoCandidate for every source.
package matching

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// NoCandidate marks a source for which no candidate exists.
const NoCandidate int32 = -1

// ErrInvalidBufferLength is returned when a declared count does not match the
// size of the buffer it describes. Nothing is written when it is returned.
var ErrInvalidBufferLength = errors.New("matching: invalid buffer length")

// TieBreak selects which candidate wins when two are equidistant.
type TieBreak uint8

const (
	// KeepFirst keeps the earliest candidate found (strict < comparison).
	KeepFirst TieBreak = iota
	// OverwriteOnEqual replaces the best with any later equidistant candidate (<= comparison).
	OverwriteOnEqual
)

// String returns the config name of the policy.
func (t TieBreak) String() string {
	if t == OverwriteOnEqual {
		return "overwrite_on_equal"
	}
	return "keep_first"
}

// ParseTieBreak maps a config name to a TieBreak.
func ParseTieBreak(s string) (TieBreak, error) {
	switch s {
	case "keep_first":
		return KeepFirst, nil
	case "overwrite_on_equal":
		return OverwriteOnEqual, nil
	}
	return KeepFirst, fmt.Errorf("matching: unknown tie-break %q", s)
}

// Matcher computes nearest-candidate assignments.
//
// MatchInto writes len(sources) indices into dst (reallocating if its capacity
// is too small) and returns the resized slice. It blocks until every index is
// computed; no partial results are ever visible.
type Matcher interface {
	Name() string
	Policy() TieBreak
	MatchInto(dst []int32, sources, candidates []mgl32.Vec3) ([]int32, error)
}

// Match runs m into a freshly allocated result.
func Match(m Matcher, sources, candidates []mgl32.Vec3) ([]int32, error) {
	return m.MatchInto(nil, sources, candidates)
}

// Nearest returns the index of the candidate closest to src, or NoCandidate.
func Nearest(src mgl32.Vec3, candidates []mgl32.Vec3, policy TieBreak) int32 {
	if len(candidates) == 0 {
		return NoCandidate
	}

	best := int32(0)
	bestDistSq := DistSq(src, candidates[0])

	if policy == OverwriteOnEqual {
		for j := 1; j < len(candidates); j++ {
			if d := DistSq(src, candidates[j]); d <= bestDistSq {
				best, bestDistSq = int32(j), d
			}
		}
		return best
	}

	for j := 1; j < len(candidates); j++ {
		if d := DistSq(src, candidates[j]); d < bestDistSq {
			best, bestDistSq = int32(j), d
		}
	}
	return best
}

// DistSq returns the squared Euclidean distance between a and b.
func DistSq(a, b mgl32.Vec3) float32 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return dx*dx + dy*dy + dz*dz
}

// matchRange fills out[start:end] for the matching sources.
func matchRange(out []int32, sources, candidates []mgl32.Vec3, policy TieBreak, start, end int) {
	for i := start; i < end; i++ {
		out[i] = Nearest(sources[i], candidates, policy)
	}
}

// resize returns dst with length n, reusing its backing array when possible.
func resize(dst []int32, n int) []int32 {
	if cap(dst) < n {
		return make([]int32, n)
	}
	return dst[:n]
}

// Verify checks that result is a valid assignment: one entry per source, every
// entry in bounds, and no candidate strictly closer than the chosen one.
// With no candidates every entry must be NoCandidate.
func Verify(result []int32, sources, candidates []mgl32.Vec3) error {
	if len(result) != len(sources) {
		return fmt.Errorf("%w: %d results for %d sources", ErrInvalidBufferLength, len(result), len(sources))
	}
	for i, idx := range result {
		if len(candidates) == 0 {
			if idx != NoCandidate {
				return fmt.Errorf("matching: source %d: got %d with no candidates", i, idx)
			}
			continue
		}
		if idx < 0 || int(idx) >= len(candidates) {
			return fmt.Errorf("matching: source %d: index %d out of range [0,%d)", i, idx, len(candidates))
		}
		chosen := DistSq(sources[i], candidates[idx])
		minDistSq := float32(math.MaxFloat32)
		for _, c := range candidates {
			minDistSq = min(minDistSq, DistSq(sources[i], c))
		}
		if minDistSq < chosen {
			return fmt.Errorf("matching: source %d: candidate %d at %v is not nearest (%v)", i, idx, chosen, minDistSq)
		}
	}
	return nil
}
