package engine

import (
	"sync"
	"time"
)

// Token identifies one scheduled callback. The zero Token is never issued.
type Token uint64

// Scheduler runs callbacks once at the next frame boundary.
type Scheduler interface {
	// Schedule queues fn and returns a token that can cancel it.
	Schedule(fn func()) Token
	// Cancel drops a queued callback. Unknown or already-run tokens are ignored.
	Cancel(tok Token)
}

// ManualScheduler queues callbacks until the host pumps them, typically once
// per rendered frame or once per headless loop iteration.
type ManualScheduler struct {
	mu    sync.Mutex
	next  Token
	queue []scheduled
	live  map[Token]bool
}

type scheduled struct {
	tok Token
	fn  func()
}

// NewManualScheduler creates an empty scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{live: make(map[Token]bool)}
}

func (s *ManualScheduler) Schedule(fn func()) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.queue = append(s.queue, scheduled{tok: s.next, fn: fn})
	s.live[s.next] = true
	return s.next
}

func (s *ManualScheduler) Cancel(tok Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, tok)
}

// RunPending runs the callbacks queued before the call and returns how many
// ran. Callbacks scheduled while running wait for the next call.
func (s *ManualScheduler) RunPending() int {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	ran := 0
	for _, item := range queue {
		s.mu.Lock()
		live := s.live[item.tok]
		delete(s.live, item.tok)
		s.mu.Unlock()
		if !live {
			continue
		}
		item.fn()
		ran++
	}
	return ran
}

// Pending returns the number of queued, uncancelled callbacks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// TimerScheduler fires each callback after a fixed interval on its own
// goroutine, approximating a display-synced frame callback.
type TimerScheduler struct {
	interval time.Duration

	mu     sync.Mutex
	next   Token
	timers map[Token]*time.Timer
}

// NewTimerScheduler creates a scheduler with the given frame interval.
func NewTimerScheduler(interval time.Duration) *TimerScheduler {
	return &TimerScheduler{interval: interval, timers: make(map[Token]*time.Timer)}
}

func (s *TimerScheduler) Schedule(fn func()) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	tok := s.next
	s.timers[tok] = time.AfterFunc(s.interval, func() {
		s.mu.Lock()
		_, live := s.timers[tok]
		delete(s.timers, tok)
		s.mu.Unlock()
		if live {
			fn()
		}
	})
	return tok
}

func (s *TimerScheduler) Cancel(tok Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[tok]; ok {
		t.Stop()
		delete(s.timers, tok)
	}
}

// Pending returns the number of timers not yet fired or cancelled.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
