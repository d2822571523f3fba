// coding_type.go defines picture coding types and slice types.

package types

import (
	"fmt"
)

type CodingType int

const (
	UndefinedCodingType CodingType = iota
	CodingTypeI
	CodingTypeP
	CodingTypeB
	EndOfCodingType
)

func (t CodingType) String() string {
	switch t {
	case UndefinedCodingType:
		return "<undefined>"
	case CodingTypeI:
		return "I"
	case CodingTypeP:
		return "P"
	case CodingTypeB:
		return "B"
	default:
		return fmt.Sprintf("<unexpected_%d>", int(t))
	}
}

// IsPredicted returns true if pictures of this type may reference other pictures.
func (t CodingType) IsPredicted() bool {
	return t == CodingTypeP || t == CodingTypeB
}

type SliceType int

const (
	UndefinedSliceType SliceType = iota
	SliceTypeI
	SliceTypeP
	SliceTypeB
	EndOfSliceType
)

func (t SliceType) String() string {
	switch t {
	case UndefinedSliceType:
		return "<undefined>"
	case SliceTypeI:
		return "I"
	case SliceTypeP:
		return "P"
	case SliceTypeB:
		return "B"
	default:
		return fmt.Sprintf("<unexpected_%d>", int(t))
	}
}
