// slot_pool.go implements the per-session pool of tracked buffer slots.

// Package trackedbuf manages the slots of per-frame working buffers a
// hardware encoder cycles through, choosing which slot every frame is bound
// to and when the buffers of a slot may be reclaimed.
package trackedbuf

import (
	"context"
	"fmt"
	"slices"

	"github.com/davecgh/go-spew/spew"
	"github.com/xaionaro-go/avencbuf/logger"
	"github.com/xaionaro-go/avencbuf/resource"
	"github.com/xaionaro-go/avencbuf/types"
)

// SlotPool is not thread-safe: it is driven by a single producer.
type SlotPool struct {
	Config Config

	table  *SlotTable
	sizing resource.Sizing

	// recent are the IDs of the most recently bound slots, oldest
	// first; -1 is an empty entry.
	recent []int

	nonRefRoundRobin       int
	consecutiveNonRefCount int
	lastMustWait           bool

	resizePendingGenerations int
}

// Request describes the frame a slot is allocated for.
type Request struct {
	FrameID types.FrameID

	// UsedAsRef is true if the frame will be referenced by later frames.
	UsedAsRef bool

	// RefFrames are the identities of the candidate reference list of the
	// picture; reference slots bound to any other frame are reclaimed.
	RefFrames []types.FrameID

	// PriorUseConfirmed is true if the caller has waited for the
	// completion of all the previously submitted work.
	PriorUseConfirmed bool
}

// Binding is the result of an allocation.
type Binding struct {
	SlotID      int
	FrameID     types.FrameID
	IsReference bool

	// MustWaitForPriorUse requires the caller to wait for the completion
	// of the previous use of the slot before submitting new work into it.
	MustWaitForPriorUse bool

	Resources resource.Resources

	// Reclaimed are the IDs of the slots released during the allocation.
	Reclaimed []int
}

func (b *Binding) String() string {
	return fmt.Sprintf("%s->slot#%d(ref:%t, wait:%t)", b.FrameID, b.SlotID, b.IsReference, b.MustWaitForPriorUse)
}

func NewSlotPool(
	cfg Config,
	allocator resource.Allocator,
	geometry types.Geometry,
) (*SlotPool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := geometry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}
	p := &SlotPool{
		Config: cfg,
		table:  NewSlotTable(allocator, cfg.NumSlots()),
		sizing: resource.Sizing{
			Geometry: geometry,
			Hardware: cfg.Hardware,
		},
		recent:           make([]int, cfg.NonRefCapacity),
		nonRefRoundRobin: -1,
	}
	for idx := range p.recent {
		p.recent[idx] = -1
	}
	return p, nil
}

func (p *SlotPool) Table() *SlotTable {
	return p.table
}

func (p *SlotPool) Geometry() types.Geometry {
	return p.sizing.Geometry
}

// RecentSlots returns the IDs of the most recently bound slots, oldest first.
func (p *SlotPool) RecentSlots() []int {
	return slices.Clone(p.recent)
}

// CurrentSlotID returns the ID of the slot bound last, or -1.
func (p *SlotPool) CurrentSlotID() int {
	return p.recent[len(p.recent)-1]
}

func (p *SlotPool) ConsecutiveNonRefCount() int {
	return p.consecutiveNonRefCount
}

func (p *SlotPool) ResizePendingGenerations() int {
	return p.resizePendingGenerations
}

// Allocate binds the frame to a slot and makes sure the slot has all the
// configured resources for the current geometry.
func (p *SlotPool) Allocate(
	ctx context.Context,
	req Request,
) (_ret *Binding, _err error) {
	logger.Tracef(ctx, "Allocate(%s, ref:%t)", req.FrameID, req.UsedAsRef)
	defer func() { logger.Tracef(ctx, "/Allocate(%s): %v %v", req.FrameID, _ret, _err) }()

	specs, err := p.validateRequest(req)
	if err != nil {
		return nil, err
	}

	useRefPolicy := req.UsedAsRef && !p.Config.IntraOnly
	var needed map[types.FrameID]struct{}
	slotID := -1
	if useRefPolicy {
		needed = neededSet(req.RefFrames)
		slotID = p.planReferenceSlot(req.FrameID, needed)
		if slotID < 0 {
			return nil, ErrNoSlotAvailable{FrameID: req.FrameID, RefCapacity: p.Config.RefCapacity}
		}
	}

	// nothing is mutated above this line
	window := p.saveWindow()
	binding := &Binding{
		FrameID:     req.FrameID,
		IsReference: useRefPolicy,
	}
	binding.Reclaimed = append(binding.Reclaimed, p.stepDeferredRelease(ctx)...)
	if useRefPolicy {
		binding.Reclaimed = append(binding.Reclaimed, p.reclaimStaleReferences(ctx, needed)...)
		p.consecutiveNonRefCount = 0
	} else {
		var reclaimed []int
		slotID, binding.MustWaitForPriorUse, reclaimed = p.advanceNonRefRing(ctx, req.PriorUseConfirmed)
		binding.Reclaimed = append(binding.Reclaimed, reclaimed...)
	}
	binding.Reclaimed = append(binding.Reclaimed, p.releaseAliases(ctx, req.FrameID, slotID)...)

	slot := p.table.Slot(slotID)
	assert(ctx, slot.State != SlotStatePendingResize, slot, "is still pending a resize")
	p.table.bind(slotID, req.FrameID)
	p.pushRecent(slotID)
	p.lastMustWait = binding.MustWaitForPriorUse
	p.assertNoAliasing(ctx, req.FrameID)
	binding.SlotID = slotID

	for _, spec := range specs {
		if _, err := p.table.getOrCreate(ctx, slotID, spec); err != nil {
			// nothing gets submitted, so the slot must not occupy the in-flight window
			p.restoreWindow(window)
			return nil, err
		}
	}
	binding.Resources = slot.Resources

	logger.Debugf(ctx, "allocated %s", binding)
	logger.TraceDump(ctx, "slots", func() string { return spew.Sdump(p.table.slots) })
	return binding, nil
}

func (p *SlotPool) validateRequest(req Request) ([]resource.SizeSpec, error) {
	if !req.FrameID.IsValid() {
		return nil, types.ErrInvalidParameter{Param: "frame_id", Err: fmt.Errorf("%s is not a valid frame identity", req.FrameID)}
	}
	specs := make([]resource.SizeSpec, 0, len(p.Config.Kinds))
	for _, kind := range p.Config.Kinds {
		spec, err := p.sizing.SizeSpec(kind)
		if err != nil {
			return nil, types.ErrInvalidParameter{Param: "geometry", Err: fmt.Errorf("unable to compute the size of %s: %w", kind, err)}
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func neededSet(frameIDs []types.FrameID) map[types.FrameID]struct{} {
	needed := make(map[types.FrameID]struct{}, len(frameIDs))
	for _, frameID := range frameIDs {
		if frameID.IsValid() {
			needed[frameID] = struct{}{}
		}
	}
	return needed
}

type windowState struct {
	recent                   []int
	nonRefRoundRobin         int
	consecutiveNonRefCount   int
	lastMustWait             bool
	resizePendingGenerations int
}

func (p *SlotPool) saveWindow() windowState {
	return windowState{
		recent:                   slices.Clone(p.recent),
		nonRefRoundRobin:         p.nonRefRoundRobin,
		consecutiveNonRefCount:   p.consecutiveNonRefCount,
		lastMustWait:             p.lastMustWait,
		resizePendingGenerations: p.resizePendingGenerations,
	}
}

// restoreWindow rolls back the bookkeeping of a failed allocation. Slots
// released meanwhile stay released; the deferred release skips them.
func (p *SlotPool) restoreWindow(w windowState) {
	copy(p.recent, w.recent)
	p.nonRefRoundRobin = w.nonRefRoundRobin
	p.consecutiveNonRefCount = w.consecutiveNonRefCount
	p.lastMustWait = w.lastMustWait
	p.resizePendingGenerations = w.resizePendingGenerations
}

func (p *SlotPool) pushRecent(slotID int) {
	copy(p.recent, p.recent[1:])
	p.recent[len(p.recent)-1] = slotID
}

func (p *SlotPool) isRecent(slotID int, from int) bool {
	return slices.Contains(p.recent[from:], slotID)
}

// releaseAliases unbinds every slot other than exceptSlotID that is bound
// to the frame.
func (p *SlotPool) releaseAliases(
	ctx context.Context,
	frameID types.FrameID,
	exceptSlotID int,
) []int {
	var released []int
	for idx := range p.table.slots {
		if idx == exceptSlotID || !p.table.slots[idx].IsBoundTo(frameID) {
			continue
		}
		logger.Debugf(ctx, "%s is bound again, releasing %s", frameID, &p.table.slots[idx])
		p.releaseSlot(ctx, idx)
		released = append(released, idx)
	}
	return released
}

func (p *SlotPool) releaseSlot(ctx context.Context, slotID int) {
	if err := p.table.ReleaseAll(ctx, slotID); err != nil {
		logger.Errorf(ctx, "unable to release slot %d: %v", slotID, err)
	}
}

func (p *SlotPool) assertNoAliasing(ctx context.Context, frameID types.FrameID) {
	count := 0
	for idx := range p.table.slots {
		if p.table.slots[idx].IsBoundTo(frameID) {
			count++
		}
	}
	assert(ctx, count == 1, frameID, "is bound to", count, "slots")
}

// Close releases the resources of all slots.
func (p *SlotPool) Close(ctx context.Context) error {
	var result []error
	for idx := range p.table.slots {
		if err := p.table.ReleaseAll(ctx, idx); err != nil {
			result = append(result, err)
		}
	}
	if len(result) > 0 {
		return fmt.Errorf("unable to release %d slots: %w", len(result), result[0])
	}
	return nil
}
