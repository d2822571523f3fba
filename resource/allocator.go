// allocator.go defines the interfaces of the physical resource allocator.

package resource

import (
	"context"
	"fmt"
)

// Resource is a physical buffer or surface created by an Allocator.
type Resource interface {
	fmt.Stringer
	Spec() SizeSpec
}

// Allocator creates and destroys physical resources. All methods are synchronous.
type Allocator interface {
	Allocate(ctx context.Context, spec SizeSpec) (Resource, error)

	// Zero fills the whole resource with zeros.
	Zero(ctx context.Context, res Resource) error

	Free(ctx context.Context, res Resource) error
}
