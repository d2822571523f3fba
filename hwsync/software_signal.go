// software_signal.go implements Signal on top of an atomic counter.

package hwsync

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/avencbuf/logger"
	"github.com/xaionaro-go/xsync"
	"go.uber.org/atomic"
)

type SoftwareSignal struct {
	value   atomic.Uint64
	locker  xsync.Mutex
	changed chan struct{}
}

var _ Signal = (*SoftwareSignal)(nil)

func NewSoftwareSignal() *SoftwareSignal {
	return &SoftwareSignal{
		changed: make(chan struct{}),
	}
}

func (s *SoftwareSignal) CurrentValue() uint64 {
	return s.value.Load()
}

// Advance raises the counter to the value; a lower value is ignored.
func (s *SoftwareSignal) Advance(ctx context.Context, value uint64) {
	s.locker.Do(xsync.WithNoLogging(ctx, true), func() {
		if value <= s.value.Load() {
			return
		}
		s.value.Store(value)
		close(s.changed)
		s.changed = make(chan struct{})
	})
}

func (s *SoftwareSignal) changedChan(ctx context.Context) <-chan struct{} {
	var ch <-chan struct{}
	s.locker.Do(xsync.WithNoLogging(ctx, true), func() {
		ch = s.changed
	})
	return ch
}

func (s *SoftwareSignal) WaitUntilAtLeast(ctx context.Context, value uint64) error {
	for {
		ch := s.changedChan(ctx)
		current := s.value.Load()
		if current >= value {
			return nil
		}
		logger.Tracef(ctx, "waiting for %d, current value is %d", value, current)
		select {
		case <-ctx.Done():
			return fmt.Errorf("unable to wait for %d (current value is %d): %w", value, current, ctx.Err())
		case <-ch:
		}
	}
}

// SoftwareSignals is a SignalSet of SoftwareSignal-s.
type SoftwareSignals struct {
	signals []*SoftwareSignal
}

var _ SignalSet = (*SoftwareSignals)(nil)

func NewSoftwareSignals(numSlots int) *SoftwareSignals {
	s := &SoftwareSignals{
		signals: make([]*SoftwareSignal, numSlots),
	}
	for idx := range s.signals {
		s.signals[idx] = NewSoftwareSignal()
	}
	return s
}

func (s *SoftwareSignals) Signal(slotID int) Signal {
	return s.signals[slotID]
}

func (s *SoftwareSignals) Advance(ctx context.Context, slotID int, value uint64) {
	s.signals[slotID].Advance(ctx, value)
}

func (s *SoftwareSignals) Len() int {
	return len(s.signals)
}
