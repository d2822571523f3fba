// policy.go implements the reference and the non-reference slot selection policies.

package trackedbuf

import (
	"context"

	"github.com/xaionaro-go/avencbuf/logger"
	"github.com/xaionaro-go/avencbuf/types"
)

func (p *SlotPool) isStaleReference(slotID int, needed map[types.FrameID]struct{}) bool {
	slot := &p.table.slots[slotID]
	if slot.State != SlotStateBound {
		return false
	}
	_, ok := needed[slot.FrameID]
	return !ok
}

// planReferenceSlot returns the first reference slot that will be Unbound
// once the stale references, the aliases and the deferred release of this
// pass are reclaimed; or -1. It does not modify anything.
func (p *SlotPool) planReferenceSlot(
	frameID types.FrameID,
	needed map[types.FrameID]struct{},
) int {
	deferred := p.deferredReleaseCandidate()
	for idx := 0; idx < p.Config.RefCapacity; idx++ {
		slot := &p.table.slots[idx]
		switch {
		case slot.State == SlotStateUnbound:
		case idx == deferred:
		case p.isStaleReference(idx, needed):
		case slot.IsBoundTo(frameID):
		default:
			continue
		}
		return idx
	}
	return -1
}

// reclaimStaleReferences releases every reference slot bound to a frame
// that is not needed anymore.
func (p *SlotPool) reclaimStaleReferences(
	ctx context.Context,
	needed map[types.FrameID]struct{},
) []int {
	var reclaimed []int
	for idx := 0; idx < p.Config.RefCapacity; idx++ {
		if !p.isStaleReference(idx, needed) {
			continue
		}
		logger.Debugf(ctx, "reclaiming %s: not referenced anymore", &p.table.slots[idx])
		p.releaseSlot(ctx, idx)
		reclaimed = append(reclaimed, idx)
	}
	return reclaimed
}

// advanceNonRefRing picks the next slot of the non-reference region.
//
// Waiting is never done here: if the ring has been cycled through without
// any confirmed completion, mustWait is set and the caller has to wait for
// the prior use of the slot.
func (p *SlotPool) advanceNonRefRing(
	ctx context.Context,
	priorUseConfirmed bool,
) (slotID int, mustWait bool, reclaimed []int) {
	if p.lastMustWait || priorUseConfirmed {
		p.consecutiveNonRefCount = 0
	} else if p.consecutiveNonRefCount < p.Config.NonRefCapacity {
		p.consecutiveNonRefCount++
	}
	p.nonRefRoundRobin = (p.nonRefRoundRobin + 1) % p.Config.NonRefCapacity
	slotID = p.Config.RefCapacity + p.nonRefRoundRobin
	mustWait = p.consecutiveNonRefCount >= p.Config.NonRefCapacity

	if p.table.slots[slotID].State == SlotStatePendingResize {
		logger.Warnf(ctx, "non-reference slot %d still holds buffers of the previous geometry; releasing them after a wait", slotID)
		p.releaseSlot(ctx, slotID)
		reclaimed = append(reclaimed, slotID)
		mustWait = true
	}
	return
}
