package matching

import "github.com/go-gl/mathgl/mgl32"

// Sequential scans every candidate for every source on the calling goroutine.
type Sequential struct {
	policy TieBreak
}

// NewSequential creates a single-threaded matcher.
func NewSequential(policy TieBreak) *Sequential {
	return &Sequential{policy: policy}
}

// Name implements Matcher.
func (s *Sequential) Name() string { return "sequential" }

// Policy implements Matcher.
func (s *Sequential) Policy() TieBreak { return s.policy }

// MatchInto implements Matcher.
func (s *Sequential) MatchInto(dst []int32, sources, candidates []mgl32.Vec3) ([]int32, error) {
	out := resize(dst, len(sources))
	matchRange(out, sources, candidates, s.policy, 0, len(sources))
	return out, nil
}
