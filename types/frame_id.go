// frame_id.go defines the identity of a physical picture and its display order.

package types

import (
	"fmt"
)

// FrameID is the encoder-assigned identity of one decoded/original picture.
// It stays stable for as long as the picture may be used as a reference.
type FrameID uint8

const (
	// FrameIDInvalid marks an unused entry of a reference list.
	FrameIDInvalid = FrameID(0x7f)

	// MaxFrameIDs is the amount of distinct valid identities (7 bits).
	MaxFrameIDs = int(FrameIDInvalid)
)

func (id FrameID) IsValid() bool {
	return id < FrameIDInvalid
}

func (id FrameID) String() string {
	if !id.IsValid() {
		return "<invalid>"
	}
	return fmt.Sprintf("frame#%d", uint8(id))
}

// POC is the picture order count (display order) of a picture.
type POC int32
