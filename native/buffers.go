package native

import (
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// marshalBuffers holds the contiguous, kernel-compatible copies of one call's
// inputs and its output. They are owned by the caller between acquireBuffers
// and release and are never handed out beyond a single kernel call.
type marshalBuffers struct {
	sources []Float3
	targets []Float3
	out     []int32
	held    bool
}

var (
	bufferPool = sync.Pool{New: func() any { return new(marshalBuffers) }}

	// liveBuffers counts acquired-but-unreleased buffer sets.
	liveBuffers atomic.Int64
)

// LiveBuffers returns the number of marshal buffer sets currently held.
// It is zero whenever no bridge call is in flight.
func LiveBuffers() int64 {
	return liveBuffers.Load()
}

// acquireBuffers takes a buffer set sized for n sources and m targets.
func acquireBuffers(n, m int) *marshalBuffers {
	b := bufferPool.Get().(*marshalBuffers)
	b.sources = growFloat3(b.sources, n)
	b.targets = growFloat3(b.targets, m)
	if cap(b.out) < n {
		b.out = make([]int32, n)
	}
	b.out = b.out[:n]
	b.held = true
	liveBuffers.Add(1)
	return b
}

// load copies positions into the kernel layout.
func (b *marshalBuffers) load(sources, targets []mgl32.Vec3) {
	for i, v := range sources {
		b.sources[i] = Float3{X: v[0], Y: v[1], Z: v[2]}
	}
	for i, v := range targets {
		b.targets[i] = Float3{X: v[0], Y: v[1], Z: v[2]}
	}
}

// release returns the set to the pool. Releasing twice is a programming error.
func (b *marshalBuffers) release() {
	if !b.held {
		panic("native: marshal buffers released twice")
	}
	b.held = false
	liveBuffers.Add(-1)
	bufferPool.Put(b)
}

func growFloat3(s []Float3, n int) []Float3 {
	if cap(s) < n {
		return make([]Float3, n)
	}
	return s[:n]
}
