package trackedbuf

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

type Stats struct {
	Bound         int
	PendingResize int
	Unbound       int
	LiveBytes     uint64
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"bound:%d pending_resize:%d unbound:%d live:%s",
		s.Bound, s.PendingResize, s.Unbound, humanize.IBytes(s.LiveBytes),
	)
}

func (p *SlotPool) Stats() Stats {
	var s Stats
	for idx := range p.table.slots {
		slot := &p.table.slots[idx]
		switch slot.State {
		case SlotStateBound:
			s.Bound++
		case SlotStatePendingResize:
			s.PendingResize++
		default:
			s.Unbound++
		}
		s.LiveBytes += slot.Resources.TotalSize()
	}
	return s
}
