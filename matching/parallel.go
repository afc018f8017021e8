package matching

import (
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// parallelThreshold is the minimum source count to use the worker pool.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// workChunk represents a contiguous range of sources for a worker to process.
type workChunk struct {
	start, end int
}

// Parallel partitions sources into contiguous chunks processed by a pool of
// persistent workers. Candidates are shared read-only; each chunk writes a
// disjoint range of the output, so no locking is needed inside a batch.
// MatchInto returns only after every dispatched chunk has completed.
type Parallel struct {
	policy     TieBreak
	numWorkers int
	threshold  int

	// mu serializes batches: the pool runs one batch at a time.
	mu sync.Mutex

	// Current batch, published to workers through workChan.
	sources    []mgl32.Vec3
	candidates []mgl32.Vec3
	out        []int32

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// NewParallel creates a parallel matcher. workers <= 0 uses GOMAXPROCS.
func NewParallel(workers int, policy TieBreak) *Parallel {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Parallel{
		policy:     policy,
		numWorkers: workers,
		threshold:  parallelThreshold,
	}
}

// MatchParallel runs a single batch on a temporary pool of the given size.
func MatchParallel(sources, candidates []mgl32.Vec3, workers int, policy TieBreak) []int32 {
	p := NewParallel(workers, policy)
	defer p.Close()
	out, _ := p.MatchInto(nil, sources, candidates)
	return out
}

// Name implements Matcher.
func (p *Parallel) Name() string { return "parallel" }

// Policy implements Matcher.
func (p *Parallel) Policy() TieBreak { return p.policy }

// Workers returns the pool size.
func (p *Parallel) Workers() int { return p.numWorkers }

// MatchInto implements Matcher.
func (p *Parallel) MatchInto(dst []int32, sources, candidates []mgl32.Vec3) ([]int32, error) {
	n := len(sources)
	out := resize(dst, n)
	if n == 0 {
		return out, nil
	}

	// Single-threaded for small batches or a one-worker pool
	if n < p.threshold || p.numWorkers == 1 {
		matchRange(out, sources, candidates, p.policy, 0, n)
		return out, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		p.startWorkers()
	}

	p.sources, p.candidates, p.out = sources, candidates, out
	p.dispatch(n)
	p.sources, p.candidates, p.out = nil, nil, nil

	return out, nil
}

// dispatch sends chunks to the workers and waits for all of them.
func (p *Parallel) dispatch(n int) {
	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}

		p.workChan <- workChunk{start: start, end: end}
		chunksDispatched++
	}

	// Barrier: every chunk must complete before the caller reads out
	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}

// startWorkers launches persistent worker goroutines.
func (p *Parallel) startWorkers() {
	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker processes chunks until stopped.
func (p *Parallel) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			matchRange(p.out, p.sources, p.candidates, p.policy, chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// Close stops the worker pool. The matcher restarts it on the next batch.
func (p *Parallel) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
	return nil
}
