// resolver.go implements the deduplication of the reference lists of a picture.

// Package refindex resolves the sparse and possibly duplicated reference
// lists of a picture into a compact set of hardware frame stores.
package refindex

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/avencbuf/logger"
	"github.com/xaionaro-go/avencbuf/types"
)

type Resolver struct {
	Config Config
}

func NewResolver(cfg Config) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Resolver{Config: cfg}, nil
}

// Resolve validates the picture and maps its active references to frame
// stores. It has no side effects.
func (r *Resolver) Resolve(
	ctx context.Context,
	bitDepth uint8,
	pic *types.PictureParams,
	slices []types.SliceParams,
) (_ret *Resolution, _err error) {
	logger.Tracef(ctx, "Resolve(%s, %d slices)", pic.FrameID, len(slices))
	defer func() { logger.Tracef(ctx, "/Resolve(%s): %v %v", pic.FrameID, _ret, _err) }()

	if err := r.validate(bitDepth, pic, slices); err != nil {
		return nil, err
	}

	res := &Resolution{
		CurrentPOC:                pic.POC,
		RefFrameList:              pic.RefFrameList,
		SameRefListBothDirections: true,
		LowDelay:                  true,
		EffectiveCodingType:       pic.CodingType,
	}
	for pos := range res.FrameStoreMap {
		res.FrameStoreMap[pos] = FrameStoreUnmapped
	}

	active := map[types.FrameID]struct{}{}
	for _, slice := range slices {
		for _, list := range slice.RefPicList {
			for _, idx := range list {
				if !idx.IsValid() {
					continue
				}
				ref := pic.RefFrameList[idx]
				active[ref.FrameID] = struct{}{}
				if slice.SliceType == types.SliceTypeB && ref.POC > pic.POC {
					res.LowDelay = false
				}
			}
		}
		if !sameRefList(pic.RefFrameList, slice) {
			res.SameRefListBothDirections = false
		}
	}
	if len(active) > r.Config.MaxFrameStores {
		return nil, ErrCapacityExceeded{Unique: len(active), Max: r.Config.MaxFrameStores}
	}

	for pos, ref := range pic.RefFrameList {
		if !ref.IsValid() {
			continue
		}
		if _, ok := active[ref.FrameID]; !ok {
			continue
		}
		fs := FrameStoreUnmapped
		for prevFS, prevID := range res.FrameStores {
			if prevID == ref.FrameID {
				fs = FrameStoreID(prevFS)
				break
			}
		}
		if !fs.IsMapped() {
			fs = FrameStoreID(len(res.FrameStores))
			res.FrameStores = append(res.FrameStores, ref.FrameID)
		}
		res.FrameStoreMap[pos] = fs
	}

	if res.ActiveSetEmpty() && pic.CodingType.IsPredicted() {
		logger.Debugf(ctx, "%s is %s but references nothing, encoding it as I", pic.FrameID, pic.CodingType)
		res.EffectiveCodingType = types.CodingTypeI
	}

	// checked against the declared coding type, before any downgrade to I
	if pic.CollocatedRefIndex.IsSet() && pic.CodingType.IsPredicted() {
		pos := types.RefIndex(pic.CollocatedRefIndex.Get())
		if !res.FrameStoreOf(pos).IsMapped() {
			return nil, types.ErrInvalidParameter{Param: "collocated_ref_index", Err: fmt.Errorf("position %d does not hold an active reference", pos)}
		}
	}

	return res, nil
}

// sameRefList returns false if list0 and list1 of the slice name
// different frames at a common index.
func sameRefList(refFrameList []types.RefFrame, slice types.SliceParams) bool {
	l0, l1 := slice.RefPicList[types.RefList0], slice.RefPicList[types.RefList1]
	for idx := 0; idx < min(len(l0), len(l1)); idx++ {
		if !l0[idx].IsValid() || !l1[idx].IsValid() {
			continue
		}
		if refFrameList[l0[idx]].FrameID != refFrameList[l1[idx]].FrameID {
			return false
		}
	}
	return true
}

func (r *Resolver) validate(
	bitDepth uint8,
	pic *types.PictureParams,
	slices []types.SliceParams,
) error {
	if !pic.FrameID.IsValid() {
		return types.ErrInvalidParameter{Param: "frame_id", Err: fmt.Errorf("%s is not a valid frame identity", pic.FrameID)}
	}
	if pic.CodingType <= types.UndefinedCodingType || pic.CodingType >= types.EndOfCodingType {
		return types.ErrInvalidParameter{Param: "coding_type", Err: fmt.Errorf("unexpected value %s", pic.CodingType)}
	}
	if err := pic.QP.Validate(bitDepth, 0); err != nil {
		return types.ErrInvalidParameter{Param: "qp", Err: err}
	}
	if len(pic.RefFrameList) > types.MaxRefFrameList {
		return types.ErrInvalidParameter{Param: "ref_frame_list", Err: fmt.Errorf("%d entries exceed the limit of %d", len(pic.RefFrameList), types.MaxRefFrameList)}
	}
	if pic.CollocatedRefIndex.IsSet() && int(pic.CollocatedRefIndex.Get()) >= types.MaxRefFrameList {
		return types.ErrInvalidParameter{Param: "collocated_ref_index", Err: fmt.Errorf("%d is out of range", pic.CollocatedRefIndex.Get())}
	}

	if len(slices) == 0 {
		return types.ErrInvalidParameter{Param: "slices", Err: fmt.Errorf("no slices")}
	}
	if len(slices) > r.Config.MaxSlices {
		return types.ErrInvalidParameter{Param: "slices", Err: fmt.Errorf("%d slices exceed the limit of %d", len(slices), r.Config.MaxSlices)}
	}
	if slices[0].SegmentAddress != 0 {
		return types.ErrInvalidParameter{Param: "segment_address", Err: fmt.Errorf("the first slice starts at %d", slices[0].SegmentAddress)}
	}
	for sliceIdx, slice := range slices {
		if slice.SliceType <= types.UndefinedSliceType || slice.SliceType >= types.EndOfSliceType {
			return types.ErrInvalidParameter{Param: "slice_type", Err: fmt.Errorf("slice %d: unexpected value %s", sliceIdx, slice.SliceType)}
		}
		if err := pic.QP.Validate(bitDepth, slice.QPDelta); err != nil {
			return types.ErrInvalidParameter{Param: "qp_delta", Err: fmt.Errorf("slice %d: %w", sliceIdx, err)}
		}
		for listIdx, list := range slice.RefPicList {
			if len(list) > types.MaxRefsPerSliceList {
				return types.ErrInvalidParameter{Param: "ref_pic_list", Err: fmt.Errorf("slice %d: list%d has %d entries, the limit is %d", sliceIdx, listIdx, len(list), types.MaxRefsPerSliceList)}
			}
			for _, idx := range list {
				if !idx.IsValid() {
					continue
				}
				if int(idx) >= len(pic.RefFrameList) || !pic.RefFrameList[idx].IsValid() {
					return types.ErrInvalidParameter{Param: "ref_pic_list", Err: fmt.Errorf("slice %d: list%d references the empty position %d", sliceIdx, listIdx, idx)}
				}
			}
		}
	}
	return nil
}
