// quality.go defines the legal quantization range.

// Package quality provides the per-picture quantization setting and its
// legal-range validation.
package quality

import (
	"fmt"
)

// MaxQP is the highest quantization parameter of the format, regardless of
// the bit depth.
const MaxQP = 51

// MinQP returns the lowest quantization parameter for the given luma bit depth.
func MinQP(bitDepth uint8) int {
	if bitDepth <= 8 {
		return 0
	}
	return -6 * int(bitDepth-8)
}

type ErrOutOfRange struct {
	Value int
	Min   int
	Max   int
}

func (e ErrOutOfRange) Error() string {
	return fmt.Sprintf("quantization parameter %d is out of range [%d, %d]", e.Value, e.Min, e.Max)
}

type qualitySerializable map[string]any

func (vq qualitySerializable) typeName() string {
	result, _ := vq["type"].(string)
	return result
}
