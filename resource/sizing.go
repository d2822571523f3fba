// sizing.go derives resource sizes from the picture geometry.

package resource

import (
	"fmt"

	"github.com/xaionaro-go/avencbuf/types"
)

const (
	CachelineSize = 64
	PageSize      = 4096

	MinLCUSize = 16
	MaxLCUSize = 64

	// the hardware prefetches up to 8 cachelines past the end of a batch
	mbCodePrefetchPadding = 8 * CachelineSize

	surfacePitchAlignment  = 128
	surfaceHeightAlignment = 32
)

// HardwareParams are record sizes reported by the accelerator backend.
type HardwareParams struct {
	PAKObjectDWords uint32 `yaml:"pak_object_dwords"`
	CURecordSize    uint32 `yaml:"cu_record_size"`

	// MVDataSize is the size of the separate MV data buffer; zero means
	// the MV data is combined with the MB code buffer.
	MVDataSize uint32 `yaml:"mv_data_size"`
}

func DefaultHardwareParams() HardwareParams {
	return HardwareParams{
		PAKObjectDWords: 5,
		CURecordSize:    64,
	}
}

// Sizing computes SizeSpec-s for one geometry.
type Sizing struct {
	Geometry types.Geometry `yaml:"geometry"`
	Hardware HardwareParams `yaml:"hardware"`
}

func (s Sizing) SizeSpec(t Type) (SizeSpec, error) {
	if err := s.Geometry.Validate(); err != nil {
		return SizeSpec{}, err
	}
	w, h := s.Geometry.Width, s.Geometry.Height
	switch t {
	case TypeMVTemporal:
		return linear(t, uint64(mvTemporalSize(w, h))), nil
	case TypeMBCode:
		if s.Hardware.PAKObjectDWords == 0 || s.Hardware.CURecordSize == 0 {
			return SizeSpec{}, fmt.Errorf("PAK object size or CU record size is not set")
		}
		return linear(t, s.mbCodeSize(w, h)), nil
	case TypeMVData:
		if s.Hardware.MVDataSize == 0 {
			return SizeSpec{}, fmt.Errorf("MV data size is not set")
		}
		return linear(t, uint64(s.Hardware.MVDataSize)), nil
	case TypeScaled2x:
		sw, sh := downscale2x(w), downscale2x(h)
		if s.Geometry.ChromaFormat == types.ChromaFormat422 {
			return surface(t, FormatYUY2, sw, sh), nil
		}
		return surface(t, FormatNV12, sw, sh), nil
	case TypeScaled4x:
		return surface(t, FormatNV12, downscale4x(w), downscale4x(h)), nil
	case TypeScaled8x:
		return surface(t, FormatNV12, downscale4x(w)>>1, downscale4x(h)>>1), nil
	case TypeScaled16x:
		return surface(t, FormatNV12, downscale4x(downscale4x(w)), downscale4x(downscale4x(h))), nil
	case TypeScaled32x:
		return surface(t, FormatNV12, downscale2x(downscale4x(downscale4x(w))), downscale2x(downscale4x(downscale4x(h)))), nil
	default:
		return SizeSpec{}, fmt.Errorf("unexpected resource type %s", t)
	}
}

func (s Sizing) mbCodeSize(w, h uint32) uint64 {
	// PAK objects are counted for the smallest LCU, CU records for the largest one.
	maxNumLCUs := uint64(DivRoundUp(w, MinLCUSize)) * uint64(DivRoundUp(h, MinLCUSize))
	mvOffset := AlignUp(maxNumLCUs*uint64(s.Hardware.PAKObjectDWords)*4, PageSize)
	maxNumCURecords := uint64(DivRoundUp(w, MaxLCUSize)) * uint64(DivRoundUp(h, MaxLCUSize)) * 64
	return mvOffset + AlignUp(maxNumCURecords*uint64(s.Hardware.CURecordSize), PageSize) + mbCodePrefetchPadding
}

func mvTemporalSize(w, h uint32) uint32 {
	perBlock64x16 := AlignUp(((w+63)>>6)*((h+15)>>4), 2) * CachelineSize
	perBlock32x32 := AlignUp(((w+31)>>5)*((h+31)>>5), 2) * CachelineSize
	return max(perBlock64x16, perBlock32x32)
}

func downscale2x(v uint32) uint32 {
	return ((v + 31) >> 5) << 4
}

func downscale4x(v uint32) uint32 {
	return ((v + 31) >> 5) << 3
}

func linear(t Type, size uint64) SizeSpec {
	return SizeSpec{
		Type:   t,
		Format: FormatLinear,
		Size:   size,
	}
}

func surface(t Type, format Format, width, height uint32) SizeSpec {
	var rowBytes, planeRows uint32
	alignedHeight := AlignUp(height, surfaceHeightAlignment)
	switch format {
	case FormatYUY2:
		rowBytes = width * 2
		planeRows = alignedHeight
	default:
		rowBytes = width
		planeRows = alignedHeight * 3 / 2
	}
	pitch := AlignUp(rowBytes, surfacePitchAlignment)
	return SizeSpec{
		Type:   t,
		Format: format,
		Width:  width,
		Height: height,
		Pitch:  pitch,
		Size:   uint64(pitch) * uint64(planeRows),
	}
}
