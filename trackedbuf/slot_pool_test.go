package trackedbuf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avencbuf/resource"
	"github.com/xaionaro-go/avencbuf/resource/allocator/memory"
	"github.com/xaionaro-go/avencbuf/types"
)

func TestSlotPoolEndToEnd(t *testing.T) {
	p, _ := newTestPool(t, DefaultConfig())

	b1 := allocate(t, p, 1, true)
	require.Equal(t, 0, b1.SlotID)
	require.True(t, b1.IsReference)
	require.False(t, b1.MustWaitForPriorUse)
	require.Equal(t, 4, b1.Resources.Len())

	b2 := allocate(t, p, 2, false, 1)
	require.Equal(t, 8, b2.SlotID)
	require.False(t, b2.MustWaitForPriorUse)

	b3 := allocate(t, p, 3, false, 1)
	require.Equal(t, 9, b3.SlotID)
	require.False(t, b3.MustWaitForPriorUse)

	b4 := allocate(t, p, 4, false, 1)
	require.Equal(t, 10, b4.SlotID)
	require.True(t, b4.MustWaitForPriorUse)
	require.Equal(t, 3, p.ConsecutiveNonRefCount())

	b5 := allocate(t, p, 5, true, 1)
	require.Equal(t, 1, b5.SlotID)
	require.True(t, b5.IsReference)
	require.False(t, b5.MustWaitForPriorUse)
	require.Empty(t, b5.Reclaimed)
	require.Zero(t, p.ConsecutiveNonRefCount())
	require.Equal(t, []int{9, 10, 1}, p.RecentSlots())
	require.Equal(t, 1, p.CurrentSlotID())

	b6 := allocate(t, p, 6, false, 1, 5)
	require.Equal(t, 8, b6.SlotID)
	require.False(t, b6.MustWaitForPriorUse)
	require.Equal(t, 0, p.Table().FindByFrameID(1))
	require.Equal(t, -1, p.Table().FindByFrameID(2))
}

func TestSlotPoolBackpressure(t *testing.T) {
	p, _ := newTestPool(t, DefaultConfig())
	ctx := context.Background()

	var waits []bool
	for frameID := types.FrameID(1); frameID <= 8; frameID++ {
		b := allocate(t, p, frameID, false)
		waits = append(waits, b.MustWaitForPriorUse)
	}
	// the wait of frame 3 resets the counter
	require.Equal(t, []bool{false, false, true, false, false, false, true, false}, waits)

	b, err := p.Allocate(ctx, Request{FrameID: 9, PriorUseConfirmed: true})
	require.NoError(t, err)
	require.False(t, b.MustWaitForPriorUse)
	require.Zero(t, p.ConsecutiveNonRefCount())
}

func TestSlotPoolRingFairness(t *testing.T) {
	cfg := DefaultConfig()
	p, _ := newTestPool(t, cfg)

	const rounds = 100
	var counts [DefaultRefCapacity + DefaultNonRefCapacity]int
	prev := -1
	for i := 0; i < rounds*cfg.NonRefCapacity; i++ {
		b := allocate(t, p, types.FrameID(i%100), false)
		require.GreaterOrEqual(t, b.SlotID, cfg.RefCapacity)
		require.NotEqual(t, prev, b.SlotID)
		if prev >= 0 {
			require.Equal(t, cfg.RefCapacity+(prev-cfg.RefCapacity+1)%cfg.NonRefCapacity, b.SlotID)
		}
		prev = b.SlotID
		counts[b.SlotID]++
	}
	for idx := cfg.RefCapacity; idx < cfg.NumSlots(); idx++ {
		require.Equal(t, rounds, counts[idx])
	}
}

func TestSlotPoolReferenceSurvival(t *testing.T) {
	p, _ := newTestPool(t, DefaultConfig())
	ctx := context.Background()

	var refs []types.FrameID
	for frameID := types.FrameID(1); frameID <= 8; frameID++ {
		b := allocate(t, p, frameID, true, refs...)
		require.Equal(t, int(frameID-1), b.SlotID)
		refs = append(refs, frameID)
	}

	before := p.Stats()
	_, err := p.Allocate(ctx, Request{FrameID: 9, UsedAsRef: true, RefFrames: refs})
	var errNoSlot ErrNoSlotAvailable
	require.ErrorAs(t, err, &errNoSlot)
	require.Equal(t, types.FrameID(9), errNoSlot.FrameID)
	require.Equal(t, before, p.Stats())
	for idx, frameID := range refs {
		require.Equal(t, idx, p.Table().FindByFrameID(frameID))
	}
	require.Equal(t, []int{5, 6, 7}, p.RecentSlots())

	// non-reference frames never touch the reference region
	b := allocate(t, p, 9, false, refs...)
	require.Equal(t, 8, b.SlotID)
	for idx, frameID := range refs {
		require.Equal(t, idx, p.Table().FindByFrameID(frameID))
	}

	b = allocate(t, p, 10, true, refs[2:]...)
	require.Equal(t, 0, b.SlotID)
	require.Equal(t, []int{0, 1}, b.Reclaimed)
	require.Equal(t, SlotStateUnbound, p.Table().Slot(1).State)
	for idx, frameID := range refs[2:] {
		require.Equal(t, idx+2, p.Table().FindByFrameID(frameID))
	}
}

func TestSlotPoolIntraOnly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IntraOnly = true
	p, _ := newTestPool(t, cfg)

	b := allocate(t, p, 1, true)
	require.False(t, b.IsReference)
	require.Equal(t, cfg.RefCapacity, b.SlotID)
}

func TestSlotPoolRebindSameFrame(t *testing.T) {
	p, _ := newTestPool(t, DefaultConfig())

	allocate(t, p, 1, true)
	allocate(t, p, 2, false)
	b := allocate(t, p, 1, false)
	require.Equal(t, 9, b.SlotID)
	require.Equal(t, []int{0}, b.Reclaimed)
	require.Equal(t, 9, p.Table().FindByFrameID(1))
	require.Equal(t, SlotStateUnbound, p.Table().Slot(0).State)
}

func TestSlotPoolAllocationFailure(t *testing.T) {
	ctx := context.Background()
	allocator := memory.NewAllocator(20000)
	p, err := NewSlotPool(DefaultConfig(), allocator, testGeometry(64, 64))
	require.NoError(t, err)

	_, err = p.Allocate(ctx, Request{FrameID: 1, UsedAsRef: true})
	var errAlloc resource.ErrAllocationFailure
	require.ErrorAs(t, err, &errAlloc)
	require.Equal(t, 0, errAlloc.SlotID)
	require.Equal(t, resource.TypeScaled8x, errAlloc.Spec.Type)
	require.Equal(t, 3, p.Table().Slot(0).Resources.Len())

	allocator.Budget = 0
	b, err := p.Allocate(ctx, Request{FrameID: 1, UsedAsRef: true})
	require.NoError(t, err)
	require.Equal(t, 0, b.SlotID)
	require.Equal(t, []int{0}, b.Reclaimed)
	require.Equal(t, 4, b.Resources.Len())
	require.Equal(t, allocator.Stats(ctx).LiveBytes, p.Stats().LiveBytes)
	require.Equal(t, uint64(256+8704+6144+6144), p.Stats().LiveBytes)
}

func TestSlotPoolAllocationFailureKeepsWindow(t *testing.T) {
	ctx := context.Background()
	p, allocator := newTestPool(t, DefaultConfig())

	allocate(t, p, 1, false)
	allocate(t, p, 2, false)
	allocate(t, p, 3, false)
	require.Equal(t, []int{8, 9, 10}, p.RecentSlots())
	counter := p.ConsecutiveNonRefCount()

	allocator.Budget = allocator.Stats(ctx).LiveBytes + 20000
	_, err := p.Allocate(ctx, Request{FrameID: 4, UsedAsRef: true})
	var errAlloc resource.ErrAllocationFailure
	require.ErrorAs(t, err, &errAlloc)
	require.Equal(t, []int{8, 9, 10}, p.RecentSlots())
	require.Equal(t, counter, p.ConsecutiveNonRefCount())

	allocator.Budget = 0
	b := allocate(t, p, 4, true)
	require.Equal(t, 0, b.SlotID)
	require.Equal(t, []int{9, 10, 0}, p.RecentSlots())

	p.NotifyGeometryChanged(ctx)
	require.Equal(t, SlotStateUnbound, p.Table().Slot(8).State)
	for _, slotID := range []int{9, 10, 0} {
		require.Equal(t, SlotStatePendingResize, p.Table().Slot(slotID).State, slotID)
	}
}

func TestSlotPoolAllocationFailureDuringDeferredRelease(t *testing.T) {
	ctx := context.Background()
	p, allocator := newTestPool(t, DefaultConfig())

	allocate(t, p, 1, false)
	allocate(t, p, 2, false)
	allocate(t, p, 3, false)
	p.NotifyGeometryChanged(ctx)
	require.Equal(t, 3, p.ResizePendingGenerations())

	// room for the slot released by the deferred release but one resource short
	perSlot := allocator.Stats(ctx).LiveBytes / 3
	allocator.Budget = 2*perSlot + 20000
	_, err := p.Allocate(ctx, Request{FrameID: 4, UsedAsRef: true})
	var errAlloc resource.ErrAllocationFailure
	require.ErrorAs(t, err, &errAlloc)
	require.Equal(t, []int{8, 9, 10}, p.RecentSlots())
	require.Equal(t, 3, p.ResizePendingGenerations())
	require.Equal(t, SlotStateUnbound, p.Table().Slot(8).State)

	allocator.Budget = 0
	allocate(t, p, 4, true)
	allocate(t, p, 5, true)
	allocate(t, p, 6, true)
	require.Zero(t, p.ResizePendingGenerations())
	require.Zero(t, p.Stats().PendingResize)
}

func TestSlotPoolInvalidRequest(t *testing.T) {
	p, _ := newTestPool(t, DefaultConfig())
	_, err := p.Allocate(context.Background(), Request{FrameID: types.FrameIDInvalid})
	var errInvalid types.ErrInvalidParameter
	require.ErrorAs(t, err, &errInvalid)
	require.Equal(t, -1, p.CurrentSlotID())
}

func TestSlotPoolClose(t *testing.T) {
	ctx := context.Background()
	p, allocator := newTestPool(t, DefaultConfig())
	allocate(t, p, 1, true)
	allocate(t, p, 2, false)
	require.NotZero(t, allocator.Stats(ctx).LiveBytes)
	require.NoError(t, p.Close(ctx))
	require.Zero(t, allocator.Stats(ctx).LiveBytes)
	require.Equal(t, Stats{Unbound: 11}, p.Stats())
}
