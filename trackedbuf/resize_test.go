package trackedbuf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avencbuf/resource"
)

func TestSlotPoolResize(t *testing.T) {
	ctx := context.Background()
	p, allocator := newTestPool(t, DefaultConfig())

	allocate(t, p, 1, true)
	allocate(t, p, 2, true, 1)
	allocate(t, p, 3, false, 1, 2)
	allocate(t, p, 4, false, 1, 2)
	require.Equal(t, []int{1, 8, 9}, p.RecentSlots())
	oldSlot9 := p.Table().Slot(9).Resources.Get(resource.TypeMVTemporal)
	require.NotNil(t, oldSlot9)

	newGeometry := testGeometry(128, 128)
	require.NoError(t, p.SetGeometry(ctx, newGeometry))
	require.NoError(t, p.SetGeometry(ctx, newGeometry))
	require.Equal(t, 3, p.ResizePendingGenerations())
	require.Equal(t, Stats{
		PendingResize: 3,
		Unbound:       8,
		LiveBytes:     p.Stats().LiveBytes,
	}, p.Stats())
	for _, slotID := range []int{1, 8, 9} {
		require.Equal(t, SlotStatePendingResize, p.Table().Slot(slotID).State)
		require.Equal(t, 4, p.Table().Slot(slotID).Resources.Len())
	}
	require.Zero(t, p.Table().Slot(0).Resources.Len())
	require.Equal(t, -1, p.Table().FindByFrameID(1))

	b := allocate(t, p, 5, true)
	require.Equal(t, 0, b.SlotID)
	require.Equal(t, []int{1}, b.Reclaimed)
	require.Equal(t, 2, p.ResizePendingGenerations())

	b = allocate(t, p, 6, false, 5)
	require.Equal(t, 10, b.SlotID)
	require.Equal(t, []int{8}, b.Reclaimed)
	require.Same(t, oldSlot9, p.Table().Slot(9).Resources.Get(resource.TypeMVTemporal))

	b = allocate(t, p, 7, false, 5)
	require.Equal(t, 8, b.SlotID)
	require.Equal(t, []int{9}, b.Reclaimed)
	require.Zero(t, p.ResizePendingGenerations())
	require.Zero(t, p.Stats().PendingResize)

	newSizing := resource.Sizing{Geometry: newGeometry, Hardware: p.Config.Hardware}
	var expectedLive uint64
	for slotID := 0; slotID < p.Table().Len(); slotID++ {
		slot := p.Table().Slot(slotID)
		for _, kind := range p.Config.Kinds {
			res := slot.Resources.Get(kind)
			if slot.State != SlotStateBound {
				require.Nil(t, res)
				continue
			}
			spec, err := newSizing.SizeSpec(kind)
			require.NoError(t, err)
			require.Equal(t, spec, res.Spec())
			expectedLive += spec.Size
		}
	}
	require.Equal(t, expectedLive, allocator.Stats(ctx).LiveBytes)
}

func TestSlotPoolResizeAtStartup(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPool(t, DefaultConfig())

	allocate(t, p, 1, true)
	require.NoError(t, p.SetGeometry(ctx, testGeometry(128, 128)))
	require.Equal(t, SlotStatePendingResize, p.Table().Slot(0).State)

	b := allocate(t, p, 2, true)
	require.Equal(t, 1, b.SlotID)
	require.Empty(t, b.Reclaimed)
	b = allocate(t, p, 3, true, 2)
	require.Equal(t, 2, b.SlotID)
	require.Empty(t, b.Reclaimed)
	b = allocate(t, p, 4, true, 2, 3)
	require.Equal(t, 0, b.SlotID)
	require.Equal(t, []int{0}, b.Reclaimed)
	require.Zero(t, p.Stats().PendingResize)
}

func TestSlotPoolResizeRejectsInvalidGeometry(t *testing.T) {
	p, _ := newTestPool(t, DefaultConfig())
	require.Error(t, p.SetGeometry(context.Background(), testGeometry(0, 64)))
	require.Equal(t, testGeometry(64, 64), p.Geometry())
}
