package sim

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/pingpong/field"
)

// parallelThreshold is the minimum range length to split across workers.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// workChunk represents a slice of the draw range for a worker to process.
type workChunk struct {
	lo, hi int
	fn     func(lo, hi int)
}

// Pass runs simulation modes over a draw range. Work is split into chunks
// handled by a persistent worker pool; Run returns only once every texel of
// the range has been written.
type Pass struct {
	jitter     *Jitter
	numWorkers int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// NewPass creates a pass runner. workers <= 0 uses GOMAXPROCS.
func NewPass(workers int, jitter *Jitter) *Pass {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pass{jitter: jitter, numWorkers: workers}
}

// Workers returns the pool size.
func (p *Pass) Workers() int { return p.numWorkers }

// Run executes mode over r, clamped to the output texture. Step reads
// pointer as the repel position; nil disables repulsion.
func (p *Pass) Run(mode Mode, b Buffers, params Params, pointer *Vec3, r field.Range) error {
	if err := b.check(mode); err != nil {
		return err
	}

	var fn func(lo, hi int)
	var n int
	switch m := mode.(type) {
	case Step:
		n = b.PosOut.Len()
		fn = func(lo, hi int) { stepRange(lo, hi, &b, &params, pointer) }
	case BootstrapDirections:
		n = b.VelOut.Len()
		fn = func(lo, hi int) { directionsRange(lo, hi, &b, m, p.jitter) }
	case BootstrapPositions:
		n = b.PosOut.Len()
		fn = func(lo, hi int) { positionsRange(lo, hi, &b, m) }
	}

	r = r.Clamp(n)
	if r.Empty() {
		return nil
	}
	if r.Len() < parallelThreshold || p.numWorkers == 1 {
		fn(r.Lo, r.Hi)
		return nil
	}
	p.dispatch(r, fn)
	return nil
}

// dispatch splits r into one chunk per worker and waits for all of them.
func (p *Pass) dispatch(r field.Range, fn func(lo, hi int)) {
	if !p.running {
		p.startWorkers()
	}

	n := r.Len()
	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		lo := r.Lo + w*chunkSize
		hi := lo + chunkSize
		if hi > r.Hi {
			hi = r.Hi
		}
		if lo >= hi {
			continue
		}
		p.workChan <- workChunk{lo: lo, hi: hi, fn: fn}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}

// startWorkers launches persistent worker goroutines.
func (p *Pass) startWorkers() {
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
func (p *Pass) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk := <-p.workChan:
			chunk.fn(chunk.lo, chunk.hi)
			p.doneChan <- struct{}{}
		}
	}
}

// Close signals all workers to exit and waits for them. Safe to call more than once.
func (p *Pass) Close() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	p.running = false
}
