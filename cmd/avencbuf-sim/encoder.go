package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/xaionaro-go/avencbuf"
	"github.com/xaionaro-go/avencbuf/hwsync"
	"github.com/xaionaro-go/avencbuf/quality"
	"github.com/xaionaro-go/avencbuf/types"
)

type gopFrame struct {
	CodingType types.CodingType
	IsRef      bool
}

func parseGOP(pattern string) ([]gopFrame, error) {
	if pattern == "" {
		return nil, fmt.Errorf("the GOP pattern is empty")
	}
	result := make([]gopFrame, 0, len(pattern))
	for _, c := range pattern {
		var f gopFrame
		switch c {
		case 'I', 'i':
			f.CodingType = types.CodingTypeI
		case 'P', 'p':
			f.CodingType = types.CodingTypeP
		case 'B', 'b':
			f.CodingType = types.CodingTypeB
		default:
			return nil, fmt.Errorf("unexpected frame type '%c' in '%s'", c, pattern)
		}
		f.IsRef = strings.ToUpper(string(c)) == string(c)
		result = append(result, f)
	}
	return result, nil
}

// encoder drives a session the way an encoder with a sliding window of
// reference frames (and no frame reordering) would.
type encoder struct {
	session *avencbuf.Session
	sim     *hwsync.Simulator
	gop     []gopFrame
	maxRefs int

	refs []types.RefFrame
}

func newEncoder(
	session *avencbuf.Session,
	sim *hwsync.Simulator,
	gop []gopFrame,
	maxRefs int,
) *encoder {
	return &encoder{
		session: session,
		sim:     sim,
		gop:     gop,
		maxRefs: maxRefs,
	}
}

func (e *encoder) resetReferences() {
	e.refs = e.refs[:0]
}

func (e *encoder) encodeFrame(ctx context.Context, frameNum int) (string, error) {
	f := e.gop[frameNum%len(e.gop)]
	frameID := types.FrameID(frameNum % types.MaxFrameIDs)
	if f.CodingType == types.CodingTypeI && f.IsRef {
		e.resetReferences()
	}

	pic := &types.PictureParams{
		FrameID:      frameID,
		POC:          types.POC(frameNum),
		CodingType:   f.CodingType,
		QP:           quality.ConstantQuality(26),
		RefFrameList: slices.Clone(e.refs),
		UsedAsRef:    f.IsRef,
	}
	slice := types.SliceParams{}
	var list []types.RefIndex
	for idx := len(e.refs) - 1; idx >= 0; idx-- {
		list = append(list, types.RefIndex(idx))
	}
	switch f.CodingType {
	case types.CodingTypeI:
		slice.SliceType = types.SliceTypeI
	case types.CodingTypeP:
		slice.SliceType = types.SliceTypeP
		slice.RefPicList[types.RefList0] = list
	case types.CodingTypeB:
		slice.SliceType = types.SliceTypeB
		slice.RefPicList[types.RefList0] = list
		slice.RefPicList[types.RefList1] = list
	}

	binding, err := e.session.AllocateForCurrentFrame(ctx, pic, []types.SliceParams{slice})
	if err != nil {
		return "", fmt.Errorf("unable to allocate buffers for frame %d: %w", frameNum, err)
	}
	if binding.MustWaitForPriorUse {
		if err := e.session.WaitForPriorUse(ctx, binding); err != nil {
			return "", err
		}
	}
	if err := e.sim.Submit(ctx, binding.SlotID, e.session.MarkSubmitted(ctx, binding)); err != nil {
		return "", fmt.Errorf("unable to submit frame %d: %w", frameNum, err)
	}

	if f.IsRef {
		e.refs = append(e.refs, types.RefFrame{FrameID: frameID, POC: pic.POC})
		if len(e.refs) > e.maxRefs {
			e.refs = e.refs[1:]
		}
	}

	res := e.session.LastResolution(ctx)
	return fmt.Sprintf(
		"%4d %s%-5s %s refs:%v wait:%-5t mapping:%s buffers:%s",
		frameNum,
		res.EffectiveCodingType,
		map[bool]string{true: "(ref)", false: ""}[f.IsRef],
		fmt.Sprintf("slot#%-2d", binding.SlotID),
		e.session.ReferenceSlots(ctx),
		binding.MustWaitForPriorUse,
		res,
		humanize.IBytes(binding.Resources.TotalSize()),
	), nil
}
