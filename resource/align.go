package resource

import (
	"golang.org/x/exp/constraints"
)

// AlignUp rounds v up to a multiple of alignment.
func AlignUp[T constraints.Unsigned](v, alignment T) T {
	return DivRoundUp(v, alignment) * alignment
}

func DivRoundUp[T constraints.Unsigned](v, divisor T) T {
	return (v + divisor - 1) / divisor
}
