package resource

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avencbuf/types"
)

func testSizing(w, h uint32, chroma types.ChromaFormat) Sizing {
	return Sizing{
		Geometry: types.Geometry{
			Resolution:   types.Resolution{Width: w, Height: h},
			ChromaFormat: chroma,
			BitDepth:     8,
		},
		Hardware: DefaultHardwareParams(),
	}
}

func TestSizingMVTemporal(t *testing.T) {
	spec, err := testSizing(1920, 1080, types.ChromaFormat420).SizeSpec(TypeMVTemporal)
	require.NoError(t, err)
	// 64x16 blocks: 30*68=2040; 32x32 blocks: 60*34=2040
	require.Equal(t, uint64(2040*CachelineSize), spec.Size)
	require.Equal(t, FormatLinear, spec.Format)
}

func TestSizingMBCode(t *testing.T) {
	s := testSizing(64, 64, types.ChromaFormat420)
	spec, err := s.SizeSpec(TypeMBCode)
	require.NoError(t, err)
	// 16 min-LCUs * 5 dwords -> one page; 1 max-LCU * 64 CU records * 64 bytes -> one page
	require.Equal(t, uint64(2*PageSize+8*CachelineSize), spec.Size)
}

func TestSizingMVDataRequiresSize(t *testing.T) {
	s := testSizing(64, 64, types.ChromaFormat420)
	_, err := s.SizeSpec(TypeMVData)
	require.Error(t, err)

	s.Hardware.MVDataSize = 1234
	spec, err := s.SizeSpec(TypeMVData)
	require.NoError(t, err)
	require.Equal(t, uint64(1234), spec.Size)
}

func TestSizingScaledSurfaces(t *testing.T) {
	s := testSizing(1920, 1080, types.ChromaFormat420)
	for _, tc := range []struct {
		t      Type
		width  uint32
		height uint32
	}{
		{TypeScaled2x, 960, 544},
		{TypeScaled4x, 480, 272},
		{TypeScaled8x, 240, 136},
		{TypeScaled16x, 120, 72},
		{TypeScaled32x, 64, 48},
	} {
		spec, err := s.SizeSpec(tc.t)
		require.NoError(t, err, tc.t)
		require.Equal(t, FormatNV12, spec.Format, tc.t)
		require.Equal(t, tc.width, spec.Width, tc.t)
		require.Equal(t, tc.height, spec.Height, tc.t)
		require.Zero(t, spec.Pitch%surfacePitchAlignment, tc.t)
		require.GreaterOrEqual(t, spec.Size, uint64(spec.Width)*uint64(spec.Height)*3/2, tc.t)
	}
}

func TestSizingScaled2xYUY2For422(t *testing.T) {
	spec, err := testSizing(1920, 1080, types.ChromaFormat422).SizeSpec(TypeScaled2x)
	require.NoError(t, err)
	require.Equal(t, FormatYUY2, spec.Format)
	require.Equal(t, uint32(1920), spec.Pitch)
}

func TestSizingRejectsInvalidGeometry(t *testing.T) {
	_, err := testSizing(0, 1080, types.ChromaFormat420).SizeSpec(TypeMVTemporal)
	var errInvalid types.ErrInvalidParameter
	require.ErrorAs(t, err, &errInvalid)
}
