package renderer

import (
	"sync"

	"github.com/pthm-cable/pingpong/engine"
)

// Recorder is a headless display. It keeps the tick of every presented
// frame and a copy of the last position buffer.
type Recorder struct {
	mu       sync.Mutex
	ticks    []int64
	last     []float32
	progress float64
	hidden   int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Present implements engine.Display. Hidden frames are counted but not copied.
func (r *Recorder) Present(f engine.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ticks = append(r.ticks, f.Tick)
	r.progress = f.Progress
	if !f.Visible {
		r.hidden++
		return
	}
	if need := f.Positions.Len() * 4; len(r.last) != need {
		r.last = make([]float32, need)
	}
	f.Positions.CopyTo(r.last)
}

// Ticks returns the ticks of all presented frames in order.
func (r *Recorder) Ticks() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.ticks...)
}

// Last returns a copy of the most recent visible position buffer.
func (r *Recorder) Last() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float32(nil), r.last...)
}

// Progress returns the emission progress of the last frame.
func (r *Recorder) Progress() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress
}

// Hidden returns how many frames arrived with visibility off.
func (r *Recorder) Hidden() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hidden
}
