// slot.go defines a single buffer slot.

package trackedbuf

import (
	"fmt"

	"github.com/xaionaro-go/avencbuf/resource"
	"github.com/xaionaro-go/avencbuf/types"
)

type SlotState int

const (
	UndefinedSlotState = SlotState(iota)
	SlotStateUnbound
	SlotStatePendingResize
	SlotStateBound
	EndOfSlotState
)

func (s SlotState) String() string {
	switch s {
	case UndefinedSlotState:
		return "<undefined>"
	case SlotStateUnbound:
		return "unbound"
	case SlotStatePendingResize:
		return "pending_resize"
	case SlotStateBound:
		return "bound"
	default:
		return fmt.Sprintf("<unexpected_%d>", int(s))
	}
}

// Slot is an entry of the SlotTable.
type Slot struct {
	ID    int
	State SlotState

	// FrameID is meaningful only in SlotStateBound.
	FrameID types.FrameID

	// UsedThisFrame is a scratch flag of the pre-encode lookup.
	UsedThisFrame bool

	Resources resource.Resources
}

func (s *Slot) IsBoundTo(frameID types.FrameID) bool {
	return s.State == SlotStateBound && s.FrameID == frameID
}

func (s *Slot) String() string {
	switch s.State {
	case SlotStateBound:
		return fmt.Sprintf("slot#%d(%s)", s.ID, s.FrameID)
	default:
		return fmt.Sprintf("slot#%d(%s)", s.ID, s.State)
	}
}
