package avencbuf

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avencbuf/resource"
	"github.com/xaionaro-go/avencbuf/types"
	"gopkg.in/yaml.v3"
)

func TestConfigYAML(t *testing.T) {
	cfg := DefaultConfig()
	err := yaml.Unmarshal([]byte(`
geometry:
  width: 1280
  height: 720
  chroma_format: yuv422
  bit_depth: 10
tracked_buffers:
  non_ref_capacity: 4
  kinds: [mv_temporal, scaled_2x]
`), &cfg)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, types.Geometry{
		Resolution:   types.Resolution{Width: 1280, Height: 720},
		ChromaFormat: types.ChromaFormat422,
		BitDepth:     10,
	}, cfg.Geometry)
	require.Equal(t, 8, cfg.TrackedBuffers.RefCapacity)
	require.Equal(t, 4, cfg.TrackedBuffers.NonRefCapacity)
	require.Equal(t, []resource.Type{resource.TypeMVTemporal, resource.TypeScaled2x}, cfg.TrackedBuffers.Kinds)
	require.Equal(t, 8, cfg.References.MaxFrameStores)

	b, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	var decoded Config
	require.NoError(t, yaml.Unmarshal(b, &decoded))
	require.Equal(t, cfg, decoded)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Geometry.BitDepth = 9
	var errInvalid types.ErrInvalidParameter
	require.ErrorAs(t, cfg.Validate(), &errInvalid)
	require.Equal(t, "bit_depth", errInvalid.Param)
}
