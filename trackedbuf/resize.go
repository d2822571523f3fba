// resize.go implements the migration of the pool to a new geometry.

package trackedbuf

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/avencbuf/logger"
	"github.com/xaionaro-go/avencbuf/types"
)

// SetGeometry changes the geometry new resources are sized for. If the
// geometry differs from the current one, NotifyGeometryChanged is called.
func (p *SlotPool) SetGeometry(
	ctx context.Context,
	geometry types.Geometry,
) error {
	if err := geometry.Validate(); err != nil {
		return fmt.Errorf("invalid geometry: %w", err)
	}
	if geometry == p.sizing.Geometry {
		return nil
	}
	logger.Infof(ctx, "geometry changed: %s -> %s", p.sizing.Geometry, geometry)
	p.sizing.Geometry = geometry
	p.NotifyGeometryChanged(ctx)
	return nil
}

// NotifyGeometryChanged releases every slot except the most recently bound
// ones, which the hardware may still use. Those are marked PendingResize and
// are released one per allocation during the next NonRefCapacity allocations.
func (p *SlotPool) NotifyGeometryChanged(ctx context.Context) {
	logger.Debugf(ctx, "NotifyGeometryChanged")
	defer func() { logger.Debugf(ctx, "/NotifyGeometryChanged") }()

	for idx := range p.table.slots {
		if p.isRecent(idx, 0) {
			slot := &p.table.slots[idx]
			slot.State = SlotStatePendingResize
			slot.FrameID = types.FrameIDInvalid
			continue
		}
		p.releaseSlot(ctx, idx)
	}
	p.resizePendingGenerations = p.Config.NonRefCapacity
}

// deferredReleaseCandidate returns the slot the next allocation pass will
// release, or -1. It does not modify anything.
func (p *SlotPool) deferredReleaseCandidate() int {
	if p.resizePendingGenerations <= 0 {
		return -1
	}
	oldest := p.recent[0]
	if oldest < 0 || p.isRecent(oldest, 1) {
		return -1
	}
	if p.table.slots[oldest].State != SlotStatePendingResize {
		return -1
	}
	return oldest
}

func (p *SlotPool) stepDeferredRelease(ctx context.Context) []int {
	if p.resizePendingGenerations <= 0 {
		return nil
	}
	slotID := p.deferredReleaseCandidate()
	p.resizePendingGenerations--
	if slotID < 0 {
		return nil
	}
	logger.Debugf(ctx, "releasing slot %d of the previous geometry (%d generations left)", slotID, p.resizePendingGenerations)
	p.releaseSlot(ctx, slotID)
	return []int{slotID}
}
