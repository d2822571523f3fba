package resource

import (
	"fmt"
)

// ErrAllocationFailure is returned when a resource of a slot cannot be created.
type ErrAllocationFailure struct {
	SlotID int
	Spec   SizeSpec
	Err    error
}

func (e ErrAllocationFailure) Error() string {
	return fmt.Sprintf("unable to allocate %s for slot %d: %v", e.Spec, e.SlotID, e.Err)
}

func (e ErrAllocationFailure) Unwrap() error {
	return e.Err
}
