// slot_table.go implements the fixed-size table of slots and their resources.

package trackedbuf

import (
	"context"
	"errors"
	"fmt"

	"github.com/xaionaro-go/avencbuf/logger"
	"github.com/xaionaro-go/avencbuf/resource"
	"github.com/xaionaro-go/avencbuf/types"
)

type SlotTable struct {
	allocator resource.Allocator
	slots     []Slot
}

func NewSlotTable(
	allocator resource.Allocator,
	numSlots int,
) *SlotTable {
	t := &SlotTable{
		allocator: allocator,
		slots:     make([]Slot, numSlots),
	}
	for idx := range t.slots {
		t.slots[idx] = Slot{
			ID:      idx,
			State:   SlotStateUnbound,
			FrameID: types.FrameIDInvalid,
		}
	}
	return t
}

func (t *SlotTable) Len() int {
	return len(t.slots)
}

func (t *SlotTable) Slot(slotID int) *Slot {
	return &t.slots[slotID]
}

// FindByFrameID returns the ID of the slot bound to the frame, or -1.
func (t *SlotTable) FindByFrameID(frameID types.FrameID) int {
	if !frameID.IsValid() {
		return -1
	}
	for idx := range t.slots {
		if t.slots[idx].IsBoundTo(frameID) {
			return idx
		}
	}
	return -1
}

// GetOrCreate returns the resource of the given kind of the slot, creating
// and zeroing it if it does not exist yet. An existing resource of another
// size is left untouched and ErrResourceSpecMismatch is returned.
func (t *SlotTable) GetOrCreate(
	ctx context.Context,
	slotID int,
	kind resource.Type,
	sizing resource.Sizing,
) (resource.Resource, error) {
	spec, err := sizing.SizeSpec(kind)
	if err != nil {
		return nil, fmt.Errorf("unable to compute the size of %s: %w", kind, err)
	}
	return t.getOrCreate(ctx, slotID, spec)
}

func (t *SlotTable) getOrCreate(
	ctx context.Context,
	slotID int,
	spec resource.SizeSpec,
) (resource.Resource, error) {
	slot := &t.slots[slotID]
	if res := slot.Resources.Get(spec.Type); res != nil {
		if res.Spec() != spec {
			return nil, ErrResourceSpecMismatch{SlotID: slotID, Have: res.Spec(), Want: spec}
		}
		return res, nil
	}

	res, err := t.allocator.Allocate(ctx, spec)
	if err != nil {
		return nil, resource.ErrAllocationFailure{SlotID: slotID, Spec: spec, Err: err}
	}
	if err := t.allocator.Zero(ctx, res); err != nil {
		if freeErr := t.allocator.Free(ctx, res); freeErr != nil {
			logger.Errorf(ctx, "unable to free %s: %v", res, freeErr)
		}
		return nil, resource.ErrAllocationFailure{SlotID: slotID, Spec: spec, Err: fmt.Errorf("unable to zero: %w", err)}
	}
	slot.Resources.Set(spec.Type, res)
	logger.Tracef(ctx, "%s: created %s", slot, res)
	return res, nil
}

// Release frees the resource of the given kind of the slot, if any.
func (t *SlotTable) Release(
	ctx context.Context,
	slotID int,
	kind resource.Type,
) error {
	slot := &t.slots[slotID]
	res := slot.Resources.Take(kind)
	if res == nil {
		return nil
	}
	logger.Tracef(ctx, "%s: releasing %s", slot, res)
	if err := t.allocator.Free(ctx, res); err != nil {
		return fmt.Errorf("unable to free %s of slot %d: %w", res, slotID, err)
	}
	return nil
}

// ReleaseAll frees every resource of the slot and unbinds it.
func (t *SlotTable) ReleaseAll(
	ctx context.Context,
	slotID int,
) error {
	slot := &t.slots[slotID]
	logger.Debugf(ctx, "releasing %s", slot)
	var errs []error
	for kind := resource.UndefinedType + 1; kind < resource.EndOfType; kind++ {
		if err := t.Release(ctx, slotID, kind); err != nil {
			errs = append(errs, err)
		}
	}
	slot.State = SlotStateUnbound
	slot.FrameID = types.FrameIDInvalid
	return errors.Join(errs...)
}

func (t *SlotTable) bind(
	slotID int,
	frameID types.FrameID,
) {
	slot := &t.slots[slotID]
	slot.State = SlotStateBound
	slot.FrameID = frameID
}
