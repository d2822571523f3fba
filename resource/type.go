// type.go defines the resource Type enum.

package resource

import (
	"fmt"
	"strings"
)

// Type is a kind of per-frame working buffer owned by a slot.
type Type int

const (
	UndefinedType Type = iota
	TypeMVTemporal
	TypeMBCode
	TypeMVData
	TypeScaled2x
	TypeScaled4x
	TypeScaled8x
	TypeScaled16x
	TypeScaled32x
	EndOfType
)

func (t Type) String() string {
	switch t {
	case UndefinedType:
		return "<undefined>"
	case TypeMVTemporal:
		return "mv_temporal"
	case TypeMBCode:
		return "mb_code"
	case TypeMVData:
		return "mv_data"
	case TypeScaled2x:
		return "scaled_2x"
	case TypeScaled4x:
		return "scaled_4x"
	case TypeScaled8x:
		return "scaled_8x"
	case TypeScaled16x:
		return "scaled_16x"
	case TypeScaled32x:
		return "scaled_32x"
	default:
		return fmt.Sprintf("<unexpected_%d>", int(t))
	}
}

func (t Type) IsValid() bool {
	return t > UndefinedType && t < EndOfType
}

// IsSurface returns true for the downscaled reconstruction surfaces.
func (t Type) IsSurface() bool {
	return t >= TypeScaled2x && t <= TypeScaled32x
}

func (t Type) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("unexpected resource type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for c := UndefinedType + 1; c < EndOfType; c++ {
		if c.String() == s {
			*t = c
			return nil
		}
	}
	return fmt.Errorf("unknown resource type '%s'", string(b))
}
