package types

import (
	"fmt"
)

// ErrInvalidParameter is returned when a picture or a configuration is
// rejected before any state is mutated.
type ErrInvalidParameter struct {
	Param string
	Err   error
}

func (e ErrInvalidParameter) Error() string {
	return fmt.Sprintf("invalid parameter '%s': %v", e.Param, e.Err)
}

func (e ErrInvalidParameter) Unwrap() error {
	return e.Err
}
