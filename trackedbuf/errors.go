package trackedbuf

import (
	"fmt"

	"github.com/xaionaro-go/avencbuf/resource"
	"github.com/xaionaro-go/avencbuf/types"
)

// ErrNoSlotAvailable is returned when every reference slot is bound to a
// frame that is still needed.
type ErrNoSlotAvailable struct {
	FrameID     types.FrameID
	RefCapacity int
}

func (e ErrNoSlotAvailable) Error() string {
	return fmt.Sprintf("no slot is available for %s: all %d reference slots hold needed frames", e.FrameID, e.RefCapacity)
}

// ErrResourceSpecMismatch is returned when a slot already holds a resource
// of the requested kind but with another size. Stale resources are only
// freed through Release.
type ErrResourceSpecMismatch struct {
	SlotID int
	Have   resource.SizeSpec
	Want   resource.SizeSpec
}

func (e ErrResourceSpecMismatch) Error() string {
	return fmt.Sprintf("slot %d holds %s, but %s was requested", e.SlotID, e.Have, e.Want)
}
