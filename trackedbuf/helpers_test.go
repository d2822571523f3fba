package trackedbuf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avencbuf/resource/allocator/memory"
	"github.com/xaionaro-go/avencbuf/types"
)

func testGeometry(width, height uint32) types.Geometry {
	return types.Geometry{
		Resolution:   types.Resolution{Width: width, Height: height},
		ChromaFormat: types.ChromaFormat420,
		BitDepth:     8,
	}
}

func newTestPool(t *testing.T, cfg Config) (*SlotPool, *memory.Allocator) {
	allocator := memory.NewAllocator(0)
	p, err := NewSlotPool(cfg, allocator, testGeometry(64, 64))
	require.NoError(t, err)
	return p, allocator
}

func allocate(
	t *testing.T,
	p *SlotPool,
	frameID types.FrameID,
	usedAsRef bool,
	refFrames ...types.FrameID,
) *Binding {
	b, err := p.Allocate(context.Background(), Request{
		FrameID:   frameID,
		UsedAsRef: usedAsRef,
		RefFrames: refFrames,
	})
	require.NoError(t, err)
	require.Equal(t, frameID, b.FrameID)
	return b
}
