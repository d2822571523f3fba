// geometry.go defines the picture geometry the buffers are sized for.

package types

import (
	"fmt"
)

type Resolution struct {
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

func (r *Resolution) Parse(s string) error {
	_, err := fmt.Sscanf(s, "%dx%d", &r.Width, &r.Height)
	if err != nil {
		return fmt.Errorf("unable to parse resolution '%s': %w", s, err)
	}
	return nil
}

// Geometry is everything about a picture that affects the size of the
// per-frame working buffers. Two geometries are interchangeable iff they
// are equal (==).
type Geometry struct {
	Resolution   `yaml:",inline"`
	ChromaFormat ChromaFormat `yaml:"chroma_format"`
	BitDepth     uint8        `yaml:"bit_depth"`
}

func (g Geometry) String() string {
	return fmt.Sprintf("%s/%s/%dbit", g.Resolution, g.ChromaFormat, g.BitDepth)
}

func (g Geometry) Validate() error {
	if g.Width == 0 || g.Height == 0 {
		return ErrInvalidParameter{Param: "resolution", Err: fmt.Errorf("zero dimension in %s", g.Resolution)}
	}
	if g.ChromaFormat <= UndefinedChromaFormat || g.ChromaFormat >= EndOfChromaFormat {
		return ErrInvalidParameter{Param: "chroma_format", Err: fmt.Errorf("unexpected value %d", int(g.ChromaFormat))}
	}
	switch g.BitDepth {
	case 8, 10, 12:
	default:
		return ErrInvalidParameter{Param: "bit_depth", Err: fmt.Errorf("unsupported bit depth %d", g.BitDepth)}
	}
	return nil
}
