// config.go defines the configuration of a Session.

package avencbuf

import (
	"fmt"

	"github.com/xaionaro-go/avencbuf/refindex"
	"github.com/xaionaro-go/avencbuf/trackedbuf"
	"github.com/xaionaro-go/avencbuf/types"
)

type Config struct {
	Geometry       types.Geometry    `yaml:"geometry"`
	TrackedBuffers trackedbuf.Config `yaml:"tracked_buffers"`
	References     refindex.Config   `yaml:"references"`
}

func DefaultConfig() Config {
	return Config{
		Geometry: types.Geometry{
			Resolution:   types.Resolution{Width: 1920, Height: 1080},
			ChromaFormat: types.ChromaFormat420,
			BitDepth:     8,
		},
		TrackedBuffers: trackedbuf.DefaultConfig(),
		References:     refindex.DefaultConfig(),
	}
}

func (cfg Config) Validate() error {
	if err := cfg.Geometry.Validate(); err != nil {
		return fmt.Errorf("invalid geometry: %w", err)
	}
	if err := cfg.TrackedBuffers.Validate(); err != nil {
		return fmt.Errorf("invalid tracked buffers config: %w", err)
	}
	if err := cfg.References.Validate(); err != nil {
		return fmt.Errorf("invalid references config: %w", err)
	}
	if cfg.References.MaxFrameStores > cfg.TrackedBuffers.RefCapacity {
		return types.ErrInvalidParameter{
			Param: "max_frame_stores",
			Err:   fmt.Errorf("%d frame stores do not fit into %d reference slots", cfg.References.MaxFrameStores, cfg.TrackedBuffers.RefCapacity),
		}
	}
	return nil
}
