// picture_params.go defines the per-picture and per-slice parameters consumed
// by the reference resolver and the slot allocator.

package types

import (
	"github.com/xaionaro-go/avencbuf/quality"
	"github.com/xaionaro-go/typing"
)

const (
	// MaxRefFrameList is the capacity of the picture-level candidate reference list.
	MaxRefFrameList = 16

	// MaxRefsPerSliceList is the capacity of one direction of a slice reference list.
	MaxRefsPerSliceList = 15
)

// RefFrame is an entry of the picture-level candidate reference list.
type RefFrame struct {
	FrameID FrameID
	POC     POC
}

// InvalidRefFrame is an unused entry of the candidate reference list.
var InvalidRefFrame = RefFrame{FrameID: FrameIDInvalid}

func (f RefFrame) IsValid() bool {
	return f.FrameID.IsValid()
}

type PictureParams struct {
	// FrameID is the identity of the picture being encoded.
	FrameID    FrameID
	POC        POC
	CodingType CodingType
	QP         quality.ConstantQuality

	// RefFrameList is the candidate reference list: pictures that may
	// be referenced by this or any future picture.
	RefFrameList []RefFrame

	// UsedAsRef is true if this picture will itself be kept as a reference.
	UsedAsRef bool

	// CollocatedRefIndex is a position in RefFrameList.
	CollocatedRefIndex typing.Optional[uint8]
}

// RefIndex is a position in PictureParams.RefFrameList.
type RefIndex uint8

// RefIndexInvalid marks an unused entry of a slice reference list.
const RefIndexInvalid = RefIndex(0xff)

func (idx RefIndex) IsValid() bool {
	return idx != RefIndexInvalid
}

type RefList int

const (
	RefList0 = RefList(0)
	RefList1 = RefList(1)
)

type SliceParams struct {
	SliceType      SliceType
	SegmentAddress uint32
	QPDelta        int8

	// RefPicList are the forward (RefList0) and the backward (RefList1)
	// reference lists of the slice.
	RefPicList [2][]RefIndex
}
