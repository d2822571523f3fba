package quality

import (
	"encoding/json"
	"fmt"
	"math"
)

// ConstantQuality is a quantization parameter (QpY) applied to a picture.
type ConstantQuality int8

func (ConstantQuality) typeName() string {
	return "constant_quality"
}

// WithDelta returns the quantization parameter of a slice that has
// the given delta relative to the picture.
func (vq ConstantQuality) WithDelta(delta int8) int {
	return int(vq) + int(delta)
}

// Validate checks the quantization parameter, optionally shifted by
// a slice delta, against the legal range of the bit depth.
func (vq ConstantQuality) Validate(bitDepth uint8, delta int8) error {
	v := vq.WithDelta(delta)
	minQP := MinQP(bitDepth)
	if v < minQP || v > MaxQP {
		return ErrOutOfRange{Value: v, Min: minQP, Max: MaxQP}
	}
	return nil
}

func (vq ConstantQuality) MarshalJSON() ([]byte, error) {
	return json.Marshal(qualitySerializable{
		"type":    vq.typeName(),
		"quality": int(vq),
	})
}

func (vq *ConstantQuality) UnmarshalJSON(b []byte) error {
	var in qualitySerializable
	if err := json.Unmarshal(b, &in); err != nil {
		return fmt.Errorf("unable to unmarshal '%s': %w", b, err)
	}
	if in.typeName() != vq.typeName() {
		return fmt.Errorf("unexpected type '%s', expected '%s'", in.typeName(), vq.typeName())
	}
	v, ok := in["quality"].(float64)
	if !ok {
		return fmt.Errorf("have not found float64 value using key 'quality' in %#+v", in)
	}
	if v != math.Trunc(v) || v < math.MinInt8 || v > math.MaxInt8 {
		return fmt.Errorf("quality %v is not an integer in [%d, %d]", v, math.MinInt8, math.MaxInt8)
	}
	*vq = ConstantQuality(v)
	return nil
}
