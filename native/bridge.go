package native

import (
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/skirmish/matching"
)

// Bridge adapts a Kernel to matching.Matcher.
//
// The kernel's tie-break comparison cannot be inspected, so the bridge
// reports the policy it was declared with; callers compare it with the
// policy the simulation expects before selecting the bridge.
type Bridge struct {
	kernel Kernel
	policy matching.TieBreak
}

// NewBridge wraps kernel, declaring that it implements policy.
func NewBridge(kernel Kernel, policy matching.TieBreak) *Bridge {
	return &Bridge{kernel: kernel, policy: policy}
}

// Name implements matching.Matcher.
func (b *Bridge) Name() string { return "native" }

// Policy implements matching.Matcher.
func (b *Bridge) Policy() matching.TieBreak { return b.policy }

// MatchInto implements matching.Matcher.
// Positions are copied into pooled kernel-layout buffers that are released on
// every exit path; dst is only written once the kernel result is validated.
func (b *Bridge) MatchInto(dst []int32, sources, candidates []mgl32.Vec3) (res []int32, err error) {
	if len(sources) > math.MaxInt32 || len(candidates) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d sources, %d candidates exceed int32", matching.ErrInvalidBufferLength, len(sources), len(candidates))
	}

	bufs := acquireBuffers(len(sources), len(candidates))
	defer bufs.release()

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("native: kernel call panicked: %v", r)
		}
	}()

	bufs.load(sources, candidates)
	if err := b.ComputeTargets(bufs.sources, int32(len(sources)), bufs.targets, int32(len(candidates)), bufs.out); err != nil {
		return nil, err
	}

	out := dst[:0]
	if cap(out) < len(sources) {
		out = make([]int32, len(sources))
	}
	out = out[:len(sources)]
	copy(out, bufs.out)
	return out, nil
}

// ComputeTargets validates the declared counts against the buffers and calls
// the kernel. On a length mismatch nothing is written to out.
// With no targets every slot receives matching.NoCandidate and the kernel is not called.
// If the kernel writes an out-of-range index, ErrKernelResult is returned and
// every slot of out is reset to matching.NoCandidate.
func (b *Bridge) ComputeTargets(sources []Float3, sourceCount int32, targets []Float3, targetCount int32, out []int32) error {
	if sourceCount < 0 || int(sourceCount) != len(sources) {
		return fmt.Errorf("%w: source count %d, buffer holds %d", matching.ErrInvalidBufferLength, sourceCount, len(sources))
	}
	if targetCount < 0 || int(targetCount) != len(targets) {
		return fmt.Errorf("%w: target count %d, buffer holds %d", matching.ErrInvalidBufferLength, targetCount, len(targets))
	}
	if len(out) != int(sourceCount) {
		return fmt.Errorf("%w: output holds %d, want %d", matching.ErrInvalidBufferLength, len(out), sourceCount)
	}

	if sourceCount == 0 {
		return nil
	}
	if targetCount == 0 {
		for i := range out {
			out[i] = matching.NoCandidate
		}
		return nil
	}

	b.kernel.ComputeTargets(&sources[0], sourceCount, &targets[0], targetCount, &out[0])

	for i, idx := range out {
		if idx < 0 || idx >= targetCount {
			for j := range out {
				out[j] = matching.NoCandidate
			}
			return fmt.Errorf("%w: out[%d] = %d with %d targets", ErrKernelResult, i, idx, targetCount)
		}
	}
	return nil
}

// WithProbe obtains the kernel-allocated probe struct, passes a copy of it to
// fn and releases it exactly once, whether fn succeeds, fails or panics.
func (b *Bridge) WithProbe(fn func(Float3) error) error {
	p := b.kernel.NewProbe()
	if p == nil {
		return ErrNullProbe
	}
	defer b.kernel.DeleteProbe(p)

	return fn(*p)
}

// SelfTest exercises the diagnostic exports to catch ABI mismatches early.
func (b *Bridge) SelfTest() error {
	if got := b.kernel.Return42(); got != 42 {
		return fmt.Errorf("%w: return42() = %d", ErrSelfTest, got)
	}
	if got := b.kernel.Add(45, 24); got != 69 {
		return fmt.Errorf("%w: my_add(45, 24) = %d", ErrSelfTest, got)
	}
	return b.WithProbe(func(Float3) error { return nil })
}

// Close releases the kernel if it holds resources.
func (b *Bridge) Close() error {
	if c, ok := b.kernel.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
