// config.go defines the configuration of a SlotPool.

package trackedbuf

import (
	"fmt"

	"github.com/xaionaro-go/avencbuf/resource"
	"github.com/xaionaro-go/avencbuf/types"
)

const (
	DefaultRefCapacity    = 8
	DefaultNonRefCapacity = 3

	// MaxSlots limits RefCapacity+NonRefCapacity.
	MaxSlots = 64
)

type Config struct {
	// RefCapacity is the amount of slots reserved for reference frames.
	RefCapacity int `yaml:"ref_capacity"`

	// NonRefCapacity is the amount of slots disposable frames cycle
	// through. It is also the depth of the in-flight window: the amount
	// of most recently bound slots that are kept alive on a resize.
	NonRefCapacity int `yaml:"non_ref_capacity"`

	// IntraOnly forces the non-reference policy for every frame.
	IntraOnly bool `yaml:"intra_only"`

	// Kinds are the resources created for every bound slot.
	Kinds []resource.Type `yaml:"kinds"`

	Hardware resource.HardwareParams `yaml:"hardware"`
}

func DefaultConfig() Config {
	return Config{
		RefCapacity:    DefaultRefCapacity,
		NonRefCapacity: DefaultNonRefCapacity,
		Kinds: []resource.Type{
			resource.TypeMVTemporal,
			resource.TypeMBCode,
			resource.TypeScaled4x,
			resource.TypeScaled8x,
		},
		Hardware: resource.DefaultHardwareParams(),
	}
}

// NumSlots returns the total amount of slots.
func (cfg Config) NumSlots() int {
	return cfg.RefCapacity + cfg.NonRefCapacity
}

func (cfg Config) Validate() error {
	if cfg.RefCapacity < 1 {
		return types.ErrInvalidParameter{Param: "ref_capacity", Err: fmt.Errorf("must be positive, but is %d", cfg.RefCapacity)}
	}
	if cfg.NonRefCapacity < 1 {
		return types.ErrInvalidParameter{Param: "non_ref_capacity", Err: fmt.Errorf("must be positive, but is %d", cfg.NonRefCapacity)}
	}
	if cfg.NumSlots() > MaxSlots {
		return types.ErrInvalidParameter{Param: "ref_capacity", Err: fmt.Errorf("%d+%d slots exceed the limit of %d", cfg.RefCapacity, cfg.NonRefCapacity, MaxSlots)}
	}
	var seen [resource.EndOfType]bool
	for _, kind := range cfg.Kinds {
		if !kind.IsValid() {
			return types.ErrInvalidParameter{Param: "kinds", Err: fmt.Errorf("unexpected resource type %s", kind)}
		}
		if seen[kind] {
			return types.ErrInvalidParameter{Param: "kinds", Err: fmt.Errorf("resource type %s is listed twice", kind)}
		}
		seen[kind] = true
	}
	return nil
}
