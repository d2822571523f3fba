// resolution.go defines the result of resolving the references of a picture.

package refindex

import (
	"fmt"
	"strings"

	"github.com/xaionaro-go/avencbuf/types"
)

// FrameStoreID is a hardware reference slot of the current picture.
type FrameStoreID int8

// FrameStoreUnmapped marks a candidate list position that is not mapped.
const FrameStoreUnmapped = FrameStoreID(-1)

func (id FrameStoreID) IsMapped() bool {
	return id >= 0
}

type Resolution struct {
	CurrentPOC   types.POC
	RefFrameList []types.RefFrame

	// FrameStoreMap maps a position of RefFrameList to a frame store.
	// Positions holding the same frame share the frame store.
	FrameStoreMap [types.MaxRefFrameList]FrameStoreID

	// FrameStores are the active frames indexed by FrameStoreID.
	FrameStores []types.FrameID

	SameRefListBothDirections bool
	LowDelay                  bool

	// EffectiveCodingType is CodingTypeI for a predicted picture without
	// active references.
	EffectiveCodingType types.CodingType
}

// ActiveSetEmpty returns true if no slice references any frame.
func (r *Resolution) ActiveSetEmpty() bool {
	return len(r.FrameStores) == 0
}

// IsActive returns true if the frame is referenced by any slice.
func (r *Resolution) IsActive(frameID types.FrameID) bool {
	for _, active := range r.FrameStores {
		if active == frameID {
			return true
		}
	}
	return false
}

// FrameStoreOf returns the frame store of a candidate list position.
func (r *Resolution) FrameStoreOf(pos types.RefIndex) FrameStoreID {
	if int(pos) >= len(r.FrameStoreMap) {
		return FrameStoreUnmapped
	}
	return r.FrameStoreMap[pos]
}

// CandidateFrameIDs returns the identities of the valid entries of the
// candidate list, including those not referenced by this picture.
func (r *Resolution) CandidateFrameIDs() []types.FrameID {
	result := make([]types.FrameID, 0, len(r.RefFrameList))
	for _, ref := range r.RefFrameList {
		if ref.IsValid() {
			result = append(result, ref.FrameID)
		}
	}
	return result
}

// TemporalDistance returns the POC distance from the reference at the
// given position to the current picture, clamped to int8.
func (r *Resolution) TemporalDistance(pos types.RefIndex) int8 {
	if int(pos) >= len(r.RefFrameList) || !r.RefFrameList[pos].IsValid() {
		return 0
	}
	diff := int64(r.CurrentPOC) - int64(r.RefFrameList[pos].POC)
	return int8(min(max(diff, -128), 127))
}

func (r *Resolution) String() string {
	var parts []string
	for pos, fs := range r.FrameStoreMap {
		if fs.IsMapped() {
			parts = append(parts, fmt.Sprintf("%d:%s->%d", pos, r.RefFrameList[pos].FrameID, fs))
		}
	}
	return fmt.Sprintf(
		"{%s; same_ref_list:%t; low_delay:%t; coding_type:%s}",
		strings.Join(parts, " "), r.SameRefListBothDirections, r.LowDelay, r.EffectiveCodingType,
	)
}
