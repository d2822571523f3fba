// pixel_format.go converts libav pixel formats into picture geometries.

// Package astiav adapts libav (go-astiav) types to avencbuf types.
package astiav

import (
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avencbuf/types"
)

var supportedPixelFormats = []astiav.PixelFormat{
	astiav.PixelFormatGray8,
	astiav.PixelFormatYuv420P,
	astiav.PixelFormatNv12,
	astiav.PixelFormatYuv420P10Le,
	astiav.PixelFormatP010Le,
	astiav.PixelFormatYuv422P,
	astiav.PixelFormatYuyv422,
	astiav.PixelFormatYuv422P10Le,
	astiav.PixelFormatYuv444P,
	astiav.PixelFormatYuv444P10Le,
}

// ParsePixelFormat returns the supported pixel format with the given libav
// name (e.g. "nv12").
func ParsePixelFormat(name string) (astiav.PixelFormat, error) {
	for _, pixFmt := range supportedPixelFormats {
		if pixFmt.String() == name {
			return pixFmt, nil
		}
	}
	return astiav.PixelFormatNone, fmt.Errorf("unsupported pixel format '%s'", name)
}

// ChromaFormatAndBitDepth returns the chroma subsampling and the luma bit
// depth of a pixel format.
func ChromaFormatAndBitDepth(pixFmt astiav.PixelFormat) (types.ChromaFormat, uint8, error) {
	switch pixFmt {
	case astiav.PixelFormatGray8:
		return types.ChromaFormatMonochrome, 8, nil
	case astiav.PixelFormatYuv420P, astiav.PixelFormatNv12:
		return types.ChromaFormat420, 8, nil
	case astiav.PixelFormatYuv420P10Le, astiav.PixelFormatP010Le:
		return types.ChromaFormat420, 10, nil
	case astiav.PixelFormatYuv422P, astiav.PixelFormatYuyv422:
		return types.ChromaFormat422, 8, nil
	case astiav.PixelFormatYuv422P10Le:
		return types.ChromaFormat422, 10, nil
	case astiav.PixelFormatYuv444P:
		return types.ChromaFormat444, 8, nil
	case astiav.PixelFormatYuv444P10Le:
		return types.ChromaFormat444, 10, nil
	default:
		return types.UndefinedChromaFormat, 0, fmt.Errorf("unsupported pixel format %s", pixFmt)
	}
}

// GeometryFromPixelFormat returns the geometry of pictures of the given
// size and pixel format.
func GeometryFromPixelFormat(
	width, height int,
	pixFmt astiav.PixelFormat,
) (types.Geometry, error) {
	if width <= 0 || height <= 0 {
		return types.Geometry{}, types.ErrInvalidParameter{Param: "resolution", Err: fmt.Errorf("%dx%d", width, height)}
	}
	chromaFormat, bitDepth, err := ChromaFormatAndBitDepth(pixFmt)
	if err != nil {
		return types.Geometry{}, types.ErrInvalidParameter{Param: "pixel_format", Err: err}
	}
	return types.Geometry{
		Resolution: types.Resolution{
			Width:  uint32(width),
			Height: uint32(height),
		},
		ChromaFormat: chromaFormat,
		BitDepth:     bitDepth,
	}, nil
}
