// preenc.go implements the slot lookup of the pre-encode pass.

package trackedbuf

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/avencbuf/logger"
	"github.com/xaionaro-go/avencbuf/types"
)

// LookupPreEnc finds the slot caching the frame, probing from
// frameID % NumSlots. If no slot caches it, the first slot not used in the
// current frame is bound to it and inCache is false.
func (p *SlotPool) LookupPreEnc(
	ctx context.Context,
	frameID types.FrameID,
) (slotID int, inCache bool, err error) {
	if !frameID.IsValid() {
		return -1, false, types.ErrInvalidParameter{Param: "frame_id", Err: fmt.Errorf("%s is not a valid frame identity", frameID)}
	}
	n := p.table.Len()
	start := int(frameID) % n
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		slot := &p.table.slots[idx]
		if slot.IsBoundTo(frameID) {
			slot.UsedThisFrame = true
			return idx, true, nil
		}
	}
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		slot := &p.table.slots[idx]
		if slot.UsedThisFrame || slot.State == SlotStatePendingResize {
			continue
		}
		logger.Tracef(ctx, "pre-encode: %s replaces %s", frameID, slot)
		p.table.bind(idx, frameID)
		slot.UsedThisFrame = true
		return idx, false, nil
	}
	return -1, false, ErrNoSlotAvailable{FrameID: frameID, RefCapacity: p.Config.RefCapacity}
}

// ResetUsedThisFrame clears the scratch flags of the pre-encode lookup.
func (p *SlotPool) ResetUsedThisFrame() {
	for idx := range p.table.slots {
		p.table.slots[idx].UsedThisFrame = false
	}
}
