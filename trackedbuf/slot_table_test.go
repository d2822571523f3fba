package trackedbuf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avencbuf/resource"
	"github.com/xaionaro-go/avencbuf/resource/allocator/memory"
	"github.com/xaionaro-go/avencbuf/types"
)

func TestSlotTableGetOrCreate(t *testing.T) {
	ctx := context.Background()
	allocator := memory.NewAllocator(0)
	table := NewSlotTable(allocator, 2)
	sizing := resource.Sizing{Geometry: testGeometry(64, 64), Hardware: resource.DefaultHardwareParams()}

	res, err := table.GetOrCreate(ctx, 1, resource.TypeMVTemporal, sizing)
	require.NoError(t, err)
	again, err := table.GetOrCreate(ctx, 1, resource.TypeMVTemporal, sizing)
	require.NoError(t, err)
	require.Same(t, res, again)
	require.Equal(t, uint64(1), allocator.Stats(ctx).Allocations)

	buf := res.(*memory.Buffer)
	for idx := range buf.Bytes() {
		buf.Bytes()[idx] = 0xff
	}
	require.NoError(t, table.Release(ctx, 1, resource.TypeMVTemporal))
	require.NoError(t, table.Release(ctx, 1, resource.TypeMVTemporal))
	require.Nil(t, table.Slot(1).Resources.Get(resource.TypeMVTemporal))

	res, err = table.GetOrCreate(ctx, 1, resource.TypeMVTemporal, sizing)
	require.NoError(t, err)
	for _, b := range res.(*memory.Buffer).Bytes() {
		require.Zero(t, b)
	}

	sizing.Geometry = testGeometry(128, 128)
	_, err = table.GetOrCreate(ctx, 1, resource.TypeMVTemporal, sizing)
	var errMismatch ErrResourceSpecMismatch
	require.ErrorAs(t, err, &errMismatch)
	require.Equal(t, res.Spec(), errMismatch.Have)
	require.Same(t, res, table.Slot(1).Resources.Get(resource.TypeMVTemporal))
	require.Equal(t, res.Spec().Size, allocator.Stats(ctx).LiveBytes)

	require.NoError(t, table.Release(ctx, 1, resource.TypeMVTemporal))
	bigger, err := table.GetOrCreate(ctx, 1, resource.TypeMVTemporal, sizing)
	require.NoError(t, err)
	require.Greater(t, bigger.Spec().Size, res.Spec().Size)
	require.Equal(t, bigger.Spec().Size, allocator.Stats(ctx).LiveBytes)
}

func TestSlotTableReleaseAll(t *testing.T) {
	ctx := context.Background()
	allocator := memory.NewAllocator(0)
	table := NewSlotTable(allocator, 2)
	sizing := resource.Sizing{Geometry: testGeometry(64, 64), Hardware: resource.DefaultHardwareParams()}

	table.bind(0, 5)
	require.Equal(t, 0, table.FindByFrameID(5))
	for _, kind := range []resource.Type{resource.TypeMVTemporal, resource.TypeMBCode, resource.TypeScaled4x} {
		_, err := table.GetOrCreate(ctx, 0, kind, sizing)
		require.NoError(t, err)
	}
	require.Equal(t, 3, table.Slot(0).Resources.Len())

	require.NoError(t, table.ReleaseAll(ctx, 0))
	require.Zero(t, table.Slot(0).Resources.Len())
	require.Equal(t, SlotStateUnbound, table.Slot(0).State)
	require.Equal(t, -1, table.FindByFrameID(5))
	require.Zero(t, allocator.Stats(ctx).LiveBytes)

	require.Equal(t, -1, table.FindByFrameID(types.FrameIDInvalid))
}

func TestSlotTableAllocationFailure(t *testing.T) {
	ctx := context.Background()
	table := NewSlotTable(memory.NewAllocator(100), 1)
	sizing := resource.Sizing{Geometry: testGeometry(64, 64), Hardware: resource.DefaultHardwareParams()}

	_, err := table.GetOrCreate(ctx, 0, resource.TypeMBCode, sizing)
	var errAlloc resource.ErrAllocationFailure
	require.ErrorAs(t, err, &errAlloc)
	require.Equal(t, 0, errAlloc.SlotID)
	require.Equal(t, resource.TypeMBCode, errAlloc.Spec.Type)
	var errBudget memory.ErrBudgetExceeded
	require.ErrorAs(t, err, &errBudget)
	require.Zero(t, table.Slot(0).Resources.Len())
}
