// size_spec.go defines the description of a resource to be allocated.

package resource

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

type Format int

const (
	UndefinedFormat Format = iota
	FormatLinear
	FormatNV12
	FormatYUY2
	EndOfFormat
)

func (f Format) String() string {
	switch f {
	case UndefinedFormat:
		return "<undefined>"
	case FormatLinear:
		return "linear"
	case FormatNV12:
		return "NV12"
	case FormatYUY2:
		return "YUY2"
	default:
		return fmt.Sprintf("<unexpected_%d>", int(f))
	}
}

// SizeSpec is what an Allocator needs to know to create a resource.
// Width/Height/Pitch are zero for linear buffers.
type SizeSpec struct {
	Type   Type
	Format Format
	Width  uint32
	Height uint32
	Pitch  uint32
	Size   uint64
}

func (s SizeSpec) String() string {
	if s.Format == FormatLinear {
		return fmt.Sprintf("%s(%s)", s.Type, humanize.IBytes(s.Size))
	}
	return fmt.Sprintf("%s(%s %dx%d pitch:%d, %s)", s.Type, s.Format, s.Width, s.Height, s.Pitch, humanize.IBytes(s.Size))
}
