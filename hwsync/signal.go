// signal.go defines the completion signals of the accelerator.

// Package hwsync abstracts waiting for the completion of the work submitted
// to an accelerator.
package hwsync

import (
	"context"
)

// Signal is a monotonically increasing completion counter of one slot.
type Signal interface {
	CurrentValue() uint64

	// WaitUntilAtLeast blocks until the counter reaches the value or
	// the context is cancelled.
	WaitUntilAtLeast(ctx context.Context, value uint64) error
}

// SignalSet provides the completion signal of every slot.
type SignalSet interface {
	Signal(slotID int) Signal
}

// FramesInFlightLimiter is implemented by backends that bound the amount of
// frames the accelerator may process concurrently.
type FramesInFlightLimiter interface {
	MaxFramesInFlight() int
}
