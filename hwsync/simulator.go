// simulator.go implements an in-order accelerator model for the software backend.

package hwsync

import (
	"context"
	"fmt"
	"time"

	"github.com/eapache/queue"
	"github.com/xaionaro-go/avencbuf/helpers/closuresignaler"
	"github.com/xaionaro-go/avencbuf/logger"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/xsync"
)

type ErrClosed struct {
	Cause error
}

func (e ErrClosed) Error() string {
	return fmt.Sprintf("the simulator is closed: %v", e.Cause)
}

func (e ErrClosed) Unwrap() error {
	return e.Cause
}

type errStopped struct{}

func (errStopped) Error() string {
	return "stopped by the user"
}

// Simulator completes submitted frames in submission order, each one
// Latency after it was submitted, and keeps at most MaxInFlight of them
// queued.
type Simulator struct {
	*SoftwareSignals
	Latency     time.Duration
	MaxInFlight int

	locker   xsync.Mutex
	inFlight *queue.Queue
	changed  chan struct{}

	closer *closuresignaler.ClosureSignaler
	done   chan struct{}
}

var (
	_ SignalSet             = (*Simulator)(nil)
	_ FramesInFlightLimiter = (*Simulator)(nil)
)

type submission struct {
	slotID   int
	value    uint64
	deadline time.Time
}

func NewSimulator(
	ctx context.Context,
	numSlots int,
	maxInFlight int,
	latency time.Duration,
) (*Simulator, error) {
	if maxInFlight < 1 {
		return nil, fmt.Errorf("the amount of frames in flight must be positive, but is %d", maxInFlight)
	}
	s := &Simulator{
		SoftwareSignals: NewSoftwareSignals(numSlots),
		Latency:         latency,
		MaxInFlight:     maxInFlight,
		inFlight:        queue.New(),
		changed:         make(chan struct{}),
		closer:          closuresignaler.New(),
		done:            make(chan struct{}),
	}
	observability.Go(ctx, func(ctx context.Context) {
		defer close(s.done)
		s.loop(ctx)
	})
	observability.Go(ctx, func(ctx context.Context) {
		select {
		case <-ctx.Done():
			s.closer.Close(ctx, ctx.Err())
		case <-s.closer.CloseChan():
		}
	})
	return s, nil
}

func (s *Simulator) MaxFramesInFlight() int {
	return s.MaxInFlight
}

// InFlight returns the amount of submitted but not completed frames.
func (s *Simulator) InFlight(ctx context.Context) int {
	var result int
	s.locker.Do(xsync.WithNoLogging(ctx, true), func() {
		result = s.inFlight.Length()
	})
	return result
}

func (s *Simulator) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

// Submit queues the work of the frame in the slot; the signal of the slot
// reaches the value on completion. It blocks while MaxInFlight frames are
// queued.
func (s *Simulator) Submit(
	ctx context.Context,
	slotID int,
	value uint64,
) error {
	logger.Tracef(ctx, "Submit(%d, %d)", slotID, value)
	defer func() { logger.Tracef(ctx, "/Submit(%d, %d)", slotID, value) }()
	if slotID < 0 || slotID >= s.Len() {
		return fmt.Errorf("slot %d is out of range [0, %d)", slotID, s.Len())
	}
	if s.closer.IsClosed() {
		return ErrClosed{Cause: s.closer.Cause()}
	}
	for {
		var (
			queued bool
			ch     <-chan struct{}
		)
		s.locker.Do(ctx, func() {
			if s.inFlight.Length() >= s.MaxInFlight {
				ch = s.changed
				return
			}
			s.inFlight.Add(&submission{
				slotID:   slotID,
				value:    value,
				deadline: time.Now().Add(s.Latency),
			})
			s.notifyLocked()
			queued = true
		})
		if queued {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.closer.CloseChan():
			return ErrClosed{Cause: s.closer.Cause()}
		case <-ch:
		}
	}
}

func (s *Simulator) loop(ctx context.Context) {
	logger.Debugf(ctx, "loop")
	defer func() { logger.Debugf(ctx, "/loop") }()
	for {
		var (
			next *submission
			ch   <-chan struct{}
		)
		s.locker.Do(xsync.WithNoLogging(ctx, true), func() {
			if s.inFlight.Length() == 0 {
				ch = s.changed
				return
			}
			next = s.inFlight.Peek().(*submission)
		})
		if next == nil {
			select {
			case <-s.closer.CloseChan():
				return
			case <-ch:
				continue
			}
		}

		if wait := time.Until(next.deadline); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-s.closer.CloseChan():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		logger.Tracef(ctx, "completed slot %d at %d", next.slotID, next.value)
		s.Advance(ctx, next.slotID, next.value)
		s.locker.Do(xsync.WithNoLogging(ctx, true), func() {
			s.inFlight.Remove()
			s.notifyLocked()
		})
	}
}

// Close stops the simulator; the frames still in flight never complete.
func (s *Simulator) Close(ctx context.Context) error {
	s.closer.Close(ctx, errStopped{})
	<-s.done
	return nil
}
