package refindex

import (
	"fmt"

	"github.com/xaionaro-go/avencbuf/types"
)

const (
	DefaultMaxFrameStores = 8
	DefaultMaxSlices      = 256
)

type Config struct {
	// MaxFrameStores is the amount of hardware reference slots unique
	// active references are mapped to.
	MaxFrameStores int `yaml:"max_frame_stores"`

	MaxSlices int `yaml:"max_slices"`
}

func DefaultConfig() Config {
	return Config{
		MaxFrameStores: DefaultMaxFrameStores,
		MaxSlices:      DefaultMaxSlices,
	}
}

func (cfg Config) Validate() error {
	if cfg.MaxFrameStores < 1 || cfg.MaxFrameStores > types.MaxRefFrameList {
		return types.ErrInvalidParameter{Param: "max_frame_stores", Err: fmt.Errorf("%d is out of range [1, %d]", cfg.MaxFrameStores, types.MaxRefFrameList)}
	}
	if cfg.MaxSlices < 1 {
		return types.ErrInvalidParameter{Param: "max_slices", Err: fmt.Errorf("must be positive, but is %d", cfg.MaxSlices)}
	}
	return nil
}
