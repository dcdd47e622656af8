package engine

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestManualScheduler(t *testing.T) {
	s := NewManualScheduler()
	var order []int

	s.Schedule(func() { order = append(order, 1) })
	tok := s.Schedule(func() { order = append(order, 2) })
	s.Schedule(func() {
		order = append(order, 3)
		s.Schedule(func() { order = append(order, 4) })
	})
	s.Cancel(tok)
	s.Cancel(Token(999))

	if s.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", s.Pending())
	}
	if n := s.RunPending(); n != 2 {
		t.Fatalf("ran %d, want 2", n)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Fatalf("order = %v, want [1 3]", order)
	}

	// The callback scheduled during the run waits for the next pump.
	if s.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", s.Pending())
	}
	s.RunPending()
	if len(order) != 3 || order[2] != 4 {
		t.Fatalf("order = %v", order)
	}
	if n := s.RunPending(); n != 0 {
		t.Errorf("empty run returned %d", n)
	}
}

func TestTimerSchedulerCancel(t *testing.T) {
	s := NewTimerScheduler(5 * time.Millisecond)
	var fired atomic.Int32

	tok := s.Schedule(func() { fired.Add(1) })
	s.Cancel(tok)
	done := make(chan struct{})
	s.Schedule(func() {
		fired.Add(1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timer never fired")
	}
	time.Sleep(20 * time.Millisecond)
	if fired.Load() != 1 {
		t.Errorf("fired %d callbacks, want 1", fired.Load())
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d", s.Pending())
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Uninitialized, "uninitialized"},
		{Loading, "loading"},
		{Running, "running"},
		{Paused, "paused"},
		{Destroyed, "destroyed"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestTransitionError(t *testing.T) {
	err := error(&TransitionError{Op: "resume", From: Running})
	if err.Error() != "resume: not allowed while running" {
		t.Errorf("message = %q", err.Error())
	}
	if !errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrDestroyed) {
		t.Errorf("running transition error unwraps wrong: %v", err)
	}

	destroyed := error(&TransitionError{Op: "pause", From: Destroyed})
	if !errors.Is(destroyed, ErrDestroyed) || !errors.Is(destroyed, ErrInvalidTransition) {
		t.Errorf("destroyed transition error unwraps wrong: %v", destroyed)
	}
	if errors.Is(destroyed, ErrConfiguration) {
		t.Error("transition error matches ErrConfiguration")
	}
}
