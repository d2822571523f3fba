// session.go implements the per-picture entry point of an encoder session.

// Package avencbuf manages the per-frame working buffers of a hardware
// video encoder session: it resolves the reference lists of every picture,
// binds the picture to a buffer slot and tracks when the previous use of
// the slot by the accelerator has completed.
package avencbuf

import (
	"context"
	"fmt"

	"github.com/asticode/go-astikit"
	"github.com/xaionaro-go/avencbuf/hwsync"
	"github.com/xaionaro-go/avencbuf/logger"
	"github.com/xaionaro-go/avencbuf/refindex"
	"github.com/xaionaro-go/avencbuf/resource"
	"github.com/xaionaro-go/avencbuf/trackedbuf"
	"github.com/xaionaro-go/avencbuf/types"
	"github.com/xaionaro-go/xsync"
)

type Session struct {
	locker   xsync.Mutex
	config   Config
	resolver *refindex.Resolver
	pool     *trackedbuf.SlotPool
	signals  hwsync.SignalSet

	lastResolution    *refindex.Resolution
	submitted         []uint64
	priorUseConfirmed bool

	closer *astikit.Closer
}

// ReferenceMapping is how the references of the last allocated picture
// are programmed into the hardware.
type ReferenceMapping struct {
	FrameStoreMap             [types.MaxRefFrameList]refindex.FrameStoreID
	SameRefListBothDirections bool
	LowDelay                  bool
}

func NewSession(
	ctx context.Context,
	cfg Config,
	allocator resource.Allocator,
	signals hwsync.SignalSet,
) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if limiter, ok := signals.(hwsync.FramesInFlightLimiter); ok {
		if maxInFlight := limiter.MaxFramesInFlight(); cfg.TrackedBuffers.NonRefCapacity < maxInFlight {
			return nil, types.ErrInvalidParameter{
				Param: "non_ref_capacity",
				Err:   fmt.Errorf("%d is less than the %d frames the backend keeps in flight", cfg.TrackedBuffers.NonRefCapacity, maxInFlight),
			}
		}
	}

	resolver, err := refindex.NewResolver(cfg.References)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the reference resolver: %w", err)
	}
	pool, err := trackedbuf.NewSlotPool(cfg.TrackedBuffers, allocator, cfg.Geometry)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the slot pool: %w", err)
	}

	s := &Session{
		config:    cfg,
		resolver:  resolver,
		pool:      pool,
		signals:   signals,
		submitted: make([]uint64, cfg.TrackedBuffers.NumSlots()),
		closer:    astikit.NewCloser(),
	}
	s.closer.Add(func() {
		if err := pool.Close(ctx); err != nil {
			logger.Errorf(ctx, "unable to release the slots: %v", err)
		}
	})
	logger.Debugf(ctx, "initialized a session for %s with %d slots", cfg.Geometry, cfg.TrackedBuffers.NumSlots())
	return s, nil
}

// AllocateForCurrentFrame validates the picture, resolves its references
// and binds it to a slot. On error nothing observable is changed, except
// that an allocation failure may leave the slot partially populated.
func (s *Session) AllocateForCurrentFrame(
	ctx context.Context,
	pic *types.PictureParams,
	slices []types.SliceParams,
) (*trackedbuf.Binding, error) {
	var (
		binding *trackedbuf.Binding
		err     error
	)
	s.locker.Do(ctx, func() {
		binding, err = s.allocateForCurrentFrameLocked(ctx, pic, slices)
	})
	return binding, err
}

func (s *Session) allocateForCurrentFrameLocked(
	ctx context.Context,
	pic *types.PictureParams,
	slices []types.SliceParams,
) (_ret *trackedbuf.Binding, _err error) {
	logger.Tracef(ctx, "allocateForCurrentFrameLocked(%s)", pic.FrameID)
	defer func() { logger.Tracef(ctx, "/allocateForCurrentFrameLocked(%s): %v %v", pic.FrameID, _ret, _err) }()

	res, err := s.resolver.Resolve(ctx, s.pool.Geometry().BitDepth, pic, slices)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve the references of %s: %w", pic.FrameID, err)
	}

	binding, err := s.pool.Allocate(ctx, trackedbuf.Request{
		FrameID:           pic.FrameID,
		UsedAsRef:         pic.UsedAsRef,
		RefFrames:         res.CandidateFrameIDs(),
		PriorUseConfirmed: s.priorUseConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to allocate a slot for %s: %w", pic.FrameID, err)
	}
	assert(ctx, binding.SlotID < len(s.submitted), binding.SlotID, len(s.submitted))

	s.priorUseConfirmed = false
	s.lastResolution = res
	return binding, nil
}

// SetGeometry migrates the pool to the new geometry, if it differs.
func (s *Session) SetGeometry(
	ctx context.Context,
	geometry types.Geometry,
) error {
	return xsync.DoR1(ctx, &s.locker, func() error {
		return s.pool.SetGeometry(ctx, geometry)
	})
}

func (s *Session) NotifyGeometryChanged(ctx context.Context) {
	s.locker.Do(ctx, func() {
		s.pool.NotifyGeometryChanged(ctx)
	})
}

// GetReferenceMapping returns the mapping of the last successfully
// allocated picture; false if there is none.
func (s *Session) GetReferenceMapping(ctx context.Context) (ReferenceMapping, bool) {
	res := s.LastResolution(ctx)
	if res == nil {
		return ReferenceMapping{}, false
	}
	return ReferenceMapping{
		FrameStoreMap:             res.FrameStoreMap,
		SameRefListBothDirections: res.SameRefListBothDirections,
		LowDelay:                  res.LowDelay,
	}, true
}

func (s *Session) LastResolution(ctx context.Context) *refindex.Resolution {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &s.locker, func() *refindex.Resolution {
		return s.lastResolution
	})
}

// ReferenceSlots returns the ID of the slot holding the frame of every
// frame store of the last picture; -1 if the frame is not in any slot.
func (s *Session) ReferenceSlots(ctx context.Context) []int {
	return xsync.DoR1(ctx, &s.locker, func() []int {
		if s.lastResolution == nil {
			return nil
		}
		result := make([]int, len(s.lastResolution.FrameStores))
		for fs, frameID := range s.lastResolution.FrameStores {
			result[fs] = s.pool.Table().FindByFrameID(frameID)
		}
		return result
	})
}

// MarkSubmitted records that work using the slot of the binding was
// submitted and returns the value the signal of the slot reaches once
// that work completes.
func (s *Session) MarkSubmitted(
	ctx context.Context,
	binding *trackedbuf.Binding,
) uint64 {
	return xsync.DoR1(ctx, &s.locker, func() uint64 {
		s.submitted[binding.SlotID]++
		return s.submitted[binding.SlotID]
	})
}

// WaitForPriorUse blocks until the work previously submitted into the slot
// of the binding has completed. It must be called before MarkSubmitted for
// the binding.
func (s *Session) WaitForPriorUse(
	ctx context.Context,
	binding *trackedbuf.Binding,
) error {
	value := xsync.DoR1(ctx, &s.locker, func() uint64 {
		return s.submitted[binding.SlotID]
	})
	if value > 0 {
		logger.Debugf(ctx, "waiting for slot %d to reach %d", binding.SlotID, value)
		if err := s.signals.Signal(binding.SlotID).WaitUntilAtLeast(ctx, value); err != nil {
			return fmt.Errorf("unable to wait for the prior use of slot %d: %w", binding.SlotID, err)
		}
	}
	s.locker.Do(ctx, func() {
		s.priorUseConfirmed = true
	})
	return nil
}

func (s *Session) LookupPreEnc(
	ctx context.Context,
	frameID types.FrameID,
) (slotID int, inCache bool, err error) {
	s.locker.Do(ctx, func() {
		slotID, inCache, err = s.pool.LookupPreEnc(ctx, frameID)
	})
	return
}

func (s *Session) ResetUsedThisFrame(ctx context.Context) {
	s.locker.Do(ctx, func() {
		s.pool.ResetUsedThisFrame()
	})
}

func (s *Session) Stats(ctx context.Context) trackedbuf.Stats {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &s.locker, s.pool.Stats)
}

// Close releases all the resources of the session.
func (s *Session) Close(ctx context.Context) error {
	logger.Debugf(ctx, "Close")
	defer func() { logger.Debugf(ctx, "/Close") }()
	var err error
	s.locker.Do(ctx, func() {
		err = s.closer.Close()
	})
	return err
}
