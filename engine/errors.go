package engine

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/pingpong/field"
)

var (
	// ErrConfiguration marks invalid construction input: a bad field size,
	// an origin texture that does not match the field, or a rejected patch.
	ErrConfiguration = errors.New("configuration error")

	// ErrResourceExhausted marks a failed buffer allocation.
	ErrResourceExhausted = field.ErrResourceExhausted

	// ErrInvalidTransition marks a lifecycle call the current state does not allow.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrDestroyed is returned by every operation after Destroy.
	ErrDestroyed = fmt.Errorf("%w: engine destroyed", ErrInvalidTransition)
)

// TransitionError reports a lifecycle call rejected in state From.
type TransitionError struct {
	Op   string
	From State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: not allowed while %s", e.Op, e.From)
}

// Unwrap returns ErrDestroyed for calls after Destroy, ErrInvalidTransition otherwise.
func (e *TransitionError) Unwrap() error {
	if e.From == Destroyed {
		return ErrDestroyed
	}
	return ErrInvalidTransition
}

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConfiguration}, args...)...)
}
